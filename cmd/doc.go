// Package cmd provides CLI commands for the HEM service.
//
// # Commands
//
// hemd: Runs the HTTP service. Holds key contexts in memory, encrypts
// float vectors into opaque tokens and evaluates arithmetic over them.
// Serves the API on one port and Prometheus metrics on another.
//
//	go run ./cmd/hemd --listen-addr=:8000 --metrics-addr=:9090
//	go run ./cmd/hemd --config=hem.yaml --log-json
//
// hem-cli: Command line client for a running service. Result tokens are
// printed alone on stdout so commands compose in shell pipelines.
//
//	go run ./cmd/hem-cli keygen
//	go run ./cmd/hem-cli encrypt 1.2 2.3 3.4
//	go run ./cmd/hem-cli add "$A" "$B"
//
// # Configuration
//
// hemd layers its settings: built-in defaults, then an optional YAML file
// given with --config, then HEM_* environment variables, then flags. The
// full commented default file can be generated:
//
//	go run ./cmd/hemd --write-default-config=hem.yaml
//
// Example config:
//
//	service_name: "hem-service"
//	listen_addr: ":8000"
//	metrics_addr: ":9090"
//	enable_simulated_decrypt: false
//	rate_limit_per_minute: 120
//	audit_log_path: "audit.jsonl"
//
// The decrypt endpoint stays disabled unless enable_simulated_decrypt is
// set; every other operation works on tokens without exposing plaintext.
package cmd
