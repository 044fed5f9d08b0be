// Package secret implements the single shared password gating destructive
// routes. The configured value is either plaintext or an argon2id PHC
// string; verification is constant-time in both cases.
package secret

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

type argon2idHash struct {
	m    uint32
	t    uint32
	p    uint8
	salt []byte
	sum  []byte
}

const (
	defaultMemory     = 64 * 1024
	defaultIterations = 3
	defaultThreads    = 1
	defaultSaltLength = 16
	defaultKeyLength  = 32
)

// Hash derives an argon2id PHC string suitable as a PASTEBIN_SECRET
// value, so the plaintext never has to live in the environment.
func Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	salt := make([]byte, defaultSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(password), salt, defaultIterations, defaultMemory, defaultThreads, defaultKeyLength)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		defaultMemory,
		defaultIterations,
		defaultThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Gate verifies submitted passwords against the configured shared secret.
type Gate struct {
	plain string
	hash  *argon2idHash
}

// New builds a Gate from the configured secret. Values starting with
// "$argon2id$" are parsed as PHC hashes; anything else is compared as
// plaintext. An empty secret yields a Gate that never verifies.
func New(raw string) (*Gate, error) {
	if strings.HasPrefix(raw, "$argon2id$") {
		h, err := parseArgon2idHash(raw)
		if err != nil {
			return nil, err
		}
		return &Gate{hash: h}, nil
	}
	return &Gate{plain: raw}, nil
}

// Verify reports whether candidate matches the shared secret.
func (g *Gate) Verify(candidate string) bool {
	if g.hash != nil {
		sum := argon2.IDKey([]byte(candidate), g.hash.salt, g.hash.t, g.hash.m, g.hash.p, uint32(len(g.hash.sum)))
		return subtle.ConstantTimeCompare(sum, g.hash.sum) == 1
	}
	if g.plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.plain), []byte(candidate)) == 1
}

func parseArgon2idHash(phc string) (*argon2idHash, error) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, errors.New("invalid argon2id hash format")
	}
	if parts[2] != "v=19" {
		return nil, fmt.Errorf("unsupported argon2id version: %s", parts[2])
	}
	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return nil, errors.New("invalid argon2id params")
	}
	var m, t, p uint64
	for _, param := range params {
		kv := strings.SplitN(param, "=", 2)
		if len(kv) != 2 {
			return nil, errors.New("invalid argon2id params")
		}
		var err error
		switch kv[0] {
		case "m":
			m, err = strconv.ParseUint(kv[1], 10, 32)
		case "t":
			t, err = strconv.ParseUint(kv[1], 10, 32)
		case "p":
			p, err = strconv.ParseUint(kv[1], 10, 8)
		default:
			return nil, errors.New("invalid argon2id params")
		}
		if err != nil {
			return nil, fmt.Errorf("invalid argon2id param %s", kv[0])
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid argon2id salt")
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, errors.New("invalid argon2id hash")
	}
	return &argon2idHash{
		m:    uint32(m),
		t:    uint32(t),
		p:    uint8(p),
		salt: salt,
		sum:  sum,
	}, nil
}
