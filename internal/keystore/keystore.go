// Package keystore resolves the signing key from a raw hex value or from a
// password-encrypted key file (PBKDF2-HMAC-SHA256 + AES-256-GCM).
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/pbkdf2"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

const (
	pbkdf2Iterations = 480_000
	saltLen          = 16
	aesKeyLen        = 32
	fileVersion      = 1
)

// encryptedFile is the on-disk format.
type encryptedFile struct {
	Version    int    `json:"version"`
	Address    string `json:"address"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// Source describes where the signing key comes from. RawHex wins over File.
type Source struct {
	RawHex   string
	File     string
	Password string
}

// Configured reports whether any key source is set.
func (s Source) Configured() bool {
	return s.RawHex != "" || s.File != ""
}

// Load resolves the private key.
func Load(src Source) (*ecdsa.PrivateKey, error) {
	switch {
	case src.RawHex != "":
		return parseHex(src.RawHex)
	case src.File != "":
		blob, err := os.ReadFile(src.File)
		if err != nil {
			return nil, apperror.New(apperror.CodeKeyFileInvalid,
				apperror.WithContext(src.File), apperror.WithCause(err))
		}
		keyHex, err := Decrypt(blob, src.Password)
		if err != nil {
			return nil, err
		}
		return parseHex(keyHex)
	default:
		return nil, apperror.New(apperror.CodeSignerUnavailable)
	}
}

// Encrypt seals a hex private key with password and returns the file contents.
func Encrypt(privateKeyHex, password string) ([]byte, error) {
	if password == "" {
		return nil, invalid("password must not be empty", nil)
	}

	key, err := parseHex(privateKeyHex)
	if err != nil {
		return nil, err
	}
	keyBytes := crypto.FromECDSA(key)

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: generating salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: generating nonce: %w", err)
	}

	out := encryptedFile{
		Version:    fileVersion,
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, keyBytes, nil)),
	}

	return json.MarshalIndent(out, "", "  ")
}

// Decrypt opens a file produced by Encrypt and returns the key as hex.
func Decrypt(blob []byte, password string) (string, error) {
	if password == "" {
		return "", invalid("password must not be empty", nil)
	}

	var stored encryptedFile
	if err := json.Unmarshal(blob, &stored); err != nil {
		return "", invalid("parse key file", err)
	}
	if stored.Version != fileVersion {
		return "", invalid(fmt.Sprintf("unsupported version %d", stored.Version), nil)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return "", invalid("decode salt", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(stored.Nonce)
	if err != nil {
		return "", invalid("decode nonce", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	if err != nil {
		return "", invalid("decode ciphertext", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", invalid("decryption failed (wrong password?)", err)
	}

	return hex.EncodeToString(plaintext), nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	derived := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("keystore: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: creating GCM: %w", err)
	}
	return gcm, nil
}

func parseHex(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, invalid("invalid private key hex", err)
	}
	return key, nil
}

func invalid(msg string, cause error) error {
	opts := []apperror.Option{apperror.WithContext(msg)}
	if cause != nil {
		opts = append(opts, apperror.WithCause(cause))
	}
	return apperror.New(apperror.CodeKeyFileInvalid, opts...)
}
