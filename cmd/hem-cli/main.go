// Command hem-cli is a command line client for the HEM service.
//
// It drives the HTTP API: generating key contexts, encrypting float
// vectors into opaque tokens and running arithmetic over those tokens.
// Result tokens are printed alone on stdout so commands can be chained:
//
//	hem-cli keygen
//	A=$(hem-cli encrypt 1.2 2.3 3.4)
//	B=$(hem-cli encrypt 4 5 6)
//	SUM=$(hem-cli add "$A" "$B")
//	hem-cli decrypt "$SUM"
//
// Decrypt only succeeds when the service runs with simulated decrypt
// enabled (HEM_ENABLE_SIMULATED_DECRYPT=true).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Raoof128/HEM/client"
)

const defaultServerURL = "http://localhost:8000"

const requestTimeout = 30 * time.Second

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "status":
		err = runStatus(args)
	case "keygen":
		err = runKeygen(args)
	case "public":
		err = runPublic(args)
	case "encrypt":
		err = runEncrypt(args)
	case "decrypt":
		err = runDecrypt(args)
	case "add", "mul", "dot":
		err = runPair(cmd, args)
	case "poly":
		err = runPoly(args)
	case "mean":
		err = runMean(args)
	case "linear":
		err = runLinear(args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hem-cli - command line client for the HEM service

Usage:
  hem-cli <command> [options] [arguments]

Commands:
  status    Show service health and the active key
  keygen    Generate and activate a new key context
  public    Print the active public key descriptor
  encrypt   Encrypt a float vector into a ciphertext token
  decrypt   Reveal the plaintext behind a token (if enabled server side)
  add       Element-wise sum of two tokens
  mul       Element-wise product of two tokens
  dot       Dot product of two tokens
  poly      Evaluate a polynomial over a token
  mean      Mean of a token's elements
  linear    Weighted sum plus bias over a token
  help      Show this help

Options:
  -u, --url <url>    Service URL (default ` + defaultServerURL + `)

Examples:
  hem-cli keygen
  A=$(hem-cli encrypt 1.2 2.3 3.4)
  B=$(hem-cli encrypt 4 5 6)
  hem-cli add "$A" "$B"
  hem-cli poly "$A" --coefficients 2,1,3`)
}

func runStatus(args []string) error {
	serverURL := defaultServerURL

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--help", "-h":
			printStatusHelp()
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	hem := client.New(serverURL)

	if err := hem.Health(ctx); err != nil {
		return fmt.Errorf("service unreachable at %s: %w", serverURL, err)
	}

	info, err := hem.ServiceInfo(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Service: %s\n", info.Service)
	fmt.Println("Health:  ok")
	if info.KeyID != nil {
		fmt.Printf("Active key: %s\n", *info.KeyID)
	} else {
		fmt.Println("Active key: none (run 'hem-cli keygen')")
	}
	return nil
}

func printStatusHelp() {
	fmt.Println(`Show service health and the active key context.

Usage:
  hem-cli status [options]

Options:
  -u, --url <url>    Service URL (default ` + defaultServerURL + `)
  -h, --help         Show this help`)
}

func runKeygen(args []string) error {
	serverURL := defaultServerURL

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--help", "-h":
			printKeygenHelp()
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	key, err := client.New(serverURL).GenerateKeys(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Generated key context")
	fmt.Printf("  Key ID:     %s\n", key.KeyID)
	fmt.Printf("  Public key: %s\n", key.PublicKey)
	return nil
}

func printKeygenHelp() {
	fmt.Println(`Generate a new key context and make it the active key.

Previously issued tokens stay bound to their original key and remain
usable; new encryptions use the new key.

Usage:
  hem-cli keygen [options]

Options:
  -u, --url <url>    Service URL (default ` + defaultServerURL + `)
  -h, --help         Show this help`)
}

func runPublic(args []string) error {
	serverURL := defaultServerURL

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--help", "-h":
			printPublicHelp()
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	key, err := client.New(serverURL).PublicKey(ctx)
	if err != nil {
		return err
	}

	fmt.Println(key.PublicKey)
	return nil
}

func printPublicHelp() {
	fmt.Println(`Print the public key descriptor of the active key context.

Usage:
  hem-cli public [options]

Options:
  -u, --url <url>    Service URL (default ` + defaultServerURL + `)
  -h, --help         Show this help`)
}

func runEncrypt(args []string) error {
	serverURL := defaultServerURL
	var values []float64

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--values", "-v":
			i++
			if i < len(args) {
				parsed, err := parseFloats(args[i])
				if err != nil {
					return err
				}
				values = append(values, parsed...)
			}
		case "--help", "-h":
			printEncryptHelp()
			return nil
		default:
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", args[i])
			}
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		printEncryptHelp()
		return fmt.Errorf("no values given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	token, err := client.New(serverURL).Encrypt(ctx, values)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

func printEncryptHelp() {
	fmt.Println(`Encrypt a float vector into an opaque ciphertext token.

Values can be given as positional arguments or as a comma-separated
list. The token is printed alone on stdout.

Usage:
  hem-cli encrypt [options] <value> [value...]
  hem-cli encrypt --values 1.2,2.3,3.4

Options:
  -u, --url <url>        Service URL (default ` + defaultServerURL + `)
  -v, --values <list>    Comma-separated float values
  -h, --help             Show this help`)
}

func runDecrypt(args []string) error {
	serverURL := defaultServerURL
	token := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--help", "-h":
			printDecryptHelp()
			return nil
		default:
			token = args[i]
		}
	}

	if token == "" {
		printDecryptHelp()
		return fmt.Errorf("no ciphertext token given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	values, err := client.New(serverURL).Decrypt(ctx, token)
	if err != nil {
		return err
	}

	fmt.Println(formatFloats(values))
	return nil
}

func printDecryptHelp() {
	fmt.Println(`Reveal the plaintext vector behind a ciphertext token.

The service refuses this with 403 unless it was started with
HEM_ENABLE_SIMULATED_DECRYPT=true.

Usage:
  hem-cli decrypt [options] <token>

Options:
  -u, --url <url>    Service URL (default ` + defaultServerURL + `)
  -h, --help         Show this help`)
}

func runPair(op string, args []string) error {
	serverURL := defaultServerURL
	var tokens []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--help", "-h":
			printPairHelp(op)
			return nil
		default:
			tokens = append(tokens, args[i])
		}
	}

	if len(tokens) != 2 {
		printPairHelp(op)
		return fmt.Errorf("%s needs exactly two tokens, got %d", op, len(tokens))
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	hem := client.New(serverURL)

	var result string
	var err error
	switch op {
	case "add":
		result, err = hem.Add(ctx, tokens[0], tokens[1])
	case "mul":
		result, err = hem.Mul(ctx, tokens[0], tokens[1])
	case "dot":
		result, err = hem.Dot(ctx, tokens[0], tokens[1])
	}
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

func printPairHelp(op string) {
	descriptions := map[string]string{
		"add": "Element-wise sum of two tokens of the same shape.",
		"mul": "Element-wise product of two tokens of the same shape.",
		"dot": "Dot product of two tokens; the result holds one element.",
	}

	fmt.Println(descriptions[op] + `

Both tokens must be bound to the same key. The result token is printed
alone on stdout.

Usage:
  hem-cli ` + op + ` [options] <token-a> <token-b>

Options:
  -u, --url <url>    Service URL (default ` + defaultServerURL + `)
  -h, --help         Show this help`)
}

func runPoly(args []string) error {
	serverURL := defaultServerURL
	token := ""
	var coefficients []float64

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--coefficients", "-c":
			i++
			if i < len(args) {
				parsed, err := parseFloats(args[i])
				if err != nil {
					return err
				}
				coefficients = parsed
			}
		case "--help", "-h":
			printPolyHelp()
			return nil
		default:
			token = args[i]
		}
	}

	if token == "" || len(coefficients) == 0 {
		printPolyHelp()
		return fmt.Errorf("poly needs a token and --coefficients")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := client.New(serverURL).Polynomial(ctx, token, coefficients)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

func printPolyHelp() {
	fmt.Println(`Evaluate a polynomial element-wise over a token.

Coefficients are given lowest degree first: "2,1,3" evaluates
2 + 1*x + 3*x^2 for each element x.

Usage:
  hem-cli poly [options] <token> --coefficients <list>

Options:
  -u, --url <url>             Service URL (default ` + defaultServerURL + `)
  -c, --coefficients <list>   Comma-separated coefficients, lowest degree first
  -h, --help                  Show this help

Examples:
  hem-cli poly "$A" --coefficients 2,1,3`)
}

func runMean(args []string) error {
	serverURL := defaultServerURL
	token := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--help", "-h":
			printMeanHelp()
			return nil
		default:
			token = args[i]
		}
	}

	if token == "" {
		printMeanHelp()
		return fmt.Errorf("no ciphertext token given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := client.New(serverURL).Mean(ctx, token)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

func printMeanHelp() {
	fmt.Println(`Compute the mean of a token's elements; the result holds one element.

Usage:
  hem-cli mean [options] <token>

Options:
  -u, --url <url>    Service URL (default ` + defaultServerURL + `)
  -h, --help         Show this help`)
}

func runLinear(args []string) error {
	serverURL := defaultServerURL
	token := ""
	var weights []float64
	bias := 0.0

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--url", "-u":
			i++
			if i < len(args) {
				serverURL = args[i]
			}
		case "--weights", "-w":
			i++
			if i < len(args) {
				parsed, err := parseFloats(args[i])
				if err != nil {
					return err
				}
				weights = parsed
			}
		case "--bias", "-b":
			i++
			if i < len(args) {
				v, err := strconv.ParseFloat(args[i], 64)
				if err != nil {
					return fmt.Errorf("invalid bias %q", args[i])
				}
				bias = v
			}
		case "--help", "-h":
			printLinearHelp()
			return nil
		default:
			token = args[i]
		}
	}

	if token == "" || len(weights) == 0 {
		printLinearHelp()
		return fmt.Errorf("linear needs a token and --weights")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := client.New(serverURL).Linear(ctx, token, weights, bias)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

func printLinearHelp() {
	fmt.Println(`Compute a weighted sum plus bias over a token's elements.

The weights vector must have the same length as the token's plaintext;
the result holds one element.

Usage:
  hem-cli linear [options] <token> --weights <list> [--bias <value>]

Options:
  -u, --url <url>        Service URL (default ` + defaultServerURL + `)
  -w, --weights <list>   Comma-separated weights, one per element
  -b, --bias <value>     Bias added to the weighted sum (default 0)
  -h, --help             Show this help

Examples:
  hem-cli linear "$A" --weights 0.5,0.5,0.5 --bias 1`)
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func formatFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}
