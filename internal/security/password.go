package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"sigma/auth/internal/domain"
)

type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var defaultParams = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

// Argon2PasswordService implements domain.PasswordService with argon2id
// encoded hashes.
type Argon2PasswordService struct {
	params Argon2Params
}

func NewArgon2PasswordService() *Argon2PasswordService {
	return &Argon2PasswordService{params: defaultParams}
}

func (s *Argon2PasswordService) Hash(plain domain.Password) (domain.Password, error) {
	salt := make([]byte, s.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return domain.Password{}, fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(plain.Value()), salt, s.params.Time, s.params.Memory, s.params.Threads, s.params.KeyLen)

	encoded := fmt.Sprintf("$argon2id$v=19$t=%d,m=%d,p=%d$%s$%s",
		s.params.Time, s.params.Memory, s.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))

	return domain.PasswordFromHash(encoded), nil
}

func (s *Argon2PasswordService) Verify(plain, hashed domain.Password) (bool, error) {
	params, salt, hash, err := parseEncodedHash(hashed.Value())
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(plain.Value()), salt, params.Time, params.Memory, params.Threads, params.KeyLen)
	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

// NeedsRehash reports whether the stored hash was produced with weaker
// parameters than the current defaults.
func (s *Argon2PasswordService) NeedsRehash(hashed domain.Password) bool {
	params, _, _, err := parseEncodedHash(hashed.Value())
	if err != nil {
		return true
	}
	return params.Time < s.params.Time ||
		params.Memory < s.params.Memory ||
		params.KeyLen < s.params.KeyLen
}

const (
	tempPasswordLength = 16

	tempUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	tempLower  = "abcdefghijkmnpqrstuvwxyz"
	tempDigits = "23456789"
	tempSymbol = "!@#$%^&*"
)

// GenerateTemporaryPassword returns a random plaintext password satisfying
// the default policy.
func (s *Argon2PasswordService) GenerateTemporaryPassword() (domain.Password, error) {
	alphabet := tempUpper + tempLower + tempDigits + tempSymbol
	buf := make([]byte, 0, tempPasswordLength)

	for _, class := range []string{tempUpper, tempLower, tempDigits, tempSymbol} {
		ch, err := randomChar(class)
		if err != nil {
			return domain.Password{}, err
		}
		buf = append(buf, ch)
	}
	for len(buf) < tempPasswordLength {
		ch, err := randomChar(alphabet)
		if err != nil {
			return domain.Password{}, err
		}
		buf = append(buf, ch)
	}

	for i := len(buf) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return domain.Password{}, fmt.Errorf("shuffle temporary password: %w", err)
		}
		j := n.Int64()
		buf[i], buf[j] = buf[j], buf[i]
	}

	return domain.NewPassword(string(buf), nil)
}

func randomChar(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, fmt.Errorf("generate temporary password: %w", err)
	}
	return alphabet[n.Int64()], nil
}

func parseEncodedHash(encoded string) (Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return Argon2Params{}, nil, nil, fmt.Errorf("malformed argon2 hash")
	}

	var params Argon2Params
	for _, field := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return Argon2Params{}, nil, nil, fmt.Errorf("malformed argon2 parameters")
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return Argon2Params{}, nil, nil, fmt.Errorf("parse argon2 parameter %s: %w", key, err)
		}
		switch key {
		case "t":
			params.Time = uint32(n)
		case "m":
			params.Memory = uint32(n)
		case "p":
			params.Threads = uint8(n)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2Params{}, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(hash))
	return params, salt, hash, nil
}
