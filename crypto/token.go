package crypto

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Serialized token layout:
//
//	magic (4) || key id length (1) || key id || shape (4, big endian) ||
//	payload words (8 per element, big endian) || integrity tag (8)
//
// The whole buffer is base64url-encoded (no padding) for transport as a
// single opaque string.
const (
	tokenMagic = "HEM1"

	// TagBytes is the length of the integrity tag appended to every token.
	TagBytes = 8

	tokenHeaderMin = len(tokenMagic) + 1 + 4
)

// Strict mode rejects non-canonical trailing bits, so every token has exactly
// one valid transport string.
var tokenEncoding = base64.RawURLEncoding.Strict()

// Token is an opaque, key-bound encoding of a numeric vector. Tokens are
// immutable: arithmetic produces new tokens and never modifies its inputs.
// The zero value is not a valid token; tokens are created by Encode and
// ParseToken only.
type Token struct {
	keyID KeyID
	words []uint64
	tag   [TagBytes]byte
}

// KeyID returns the identifier of the context the token was encoded under.
func (t *Token) KeyID() KeyID {
	return t.keyID
}

// Shape returns the length of the encoded vector. In memory the shape is the
// payload length itself; the serialized form carries it as a separate field
// that ParseToken checks against the true payload size.
func (t *Token) Shape() int {
	return len(t.words)
}

// preimage returns the serialized token bytes without the trailing tag. The
// integrity tag is derived over exactly these bytes.
func (t *Token) preimage() []byte {
	buf := make([]byte, 0, tokenHeaderMin+len(t.keyID)+8*len(t.words)+TagBytes)
	buf = append(buf, tokenMagic...)
	buf = append(buf, byte(len(t.keyID)))
	buf = append(buf, t.keyID...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(t.words)))
	for _, w := range t.words {
		buf = binary.BigEndian.AppendUint64(buf, w)
	}
	return buf
}

// String serializes the token into its opaque transport form.
func (t *Token) String() string {
	raw := append(t.preimage(), t.tag[:]...)
	return tokenEncoding.EncodeToString(raw)
}

// ParseToken deserializes the opaque transport form of a token. Every
// structural defect (bad encoding, wrong magic, truncation, a shape field
// that disagrees with the payload length, an oversized key id) is reported
// as ErrCorruptToken.
func ParseToken(s string) (*Token, error) {
	raw, err := tokenEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrCorruptToken)
	}
	if len(raw) < tokenHeaderMin+1+8+TagBytes {
		return nil, fmt.Errorf("%w: too short", ErrCorruptToken)
	}
	if string(raw[:len(tokenMagic)]) != tokenMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptToken)
	}

	idLen := int(raw[len(tokenMagic)])
	if idLen == 0 {
		return nil, fmt.Errorf("%w: empty key id", ErrCorruptToken)
	}
	headerLen := tokenHeaderMin + idLen
	if len(raw) < headerLen+8+TagBytes {
		return nil, fmt.Errorf("%w: too short for key id", ErrCorruptToken)
	}
	keyID := KeyID(raw[len(tokenMagic)+1 : len(tokenMagic)+1+idLen])

	shape := binary.BigEndian.Uint32(raw[headerLen-4 : headerLen])
	if shape == 0 {
		return nil, fmt.Errorf("%w: zero shape", ErrCorruptToken)
	}
	// The declared shape must equal the true payload length.
	if uint64(len(raw)) != uint64(headerLen)+8*uint64(shape)+TagBytes {
		return nil, fmt.Errorf("%w: shape disagrees with payload length", ErrCorruptToken)
	}

	words := make([]uint64, shape)
	for i := range words {
		words[i] = binary.BigEndian.Uint64(raw[headerLen+8*i:])
	}

	t := &Token{keyID: keyID, words: words}
	copy(t.tag[:], raw[len(raw)-TagBytes:])
	return t, nil
}
