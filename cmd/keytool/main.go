// Command keytool encrypts a raw hex signing key into the key file format
// read by chain.key_file.
//
// The key is read from stdin (one line) and the password from the
// environment variable named by --password-env.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"

	"github.com/fd1az/dex-arbitrage-bot/internal/keystore"
)

func main() {
	_ = godotenv.Load()

	out := flag.String("out", "data/signer.json", "Where to write the encrypted key file")
	passwordEnv := flag.String("password-env", "ARB_KEY_PASSWORD", "Environment variable holding the password")
	verify := flag.Bool("verify", false, "Decrypt --out and print the signer address instead of writing")
	flag.Parse()

	if err := run(*out, os.Getenv(*passwordEnv), *verify); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(out, password string, verify bool) error {
	if verify {
		key, err := keystore.Load(keystore.Source{File: out, Password: password})
		if err != nil {
			return err
		}
		fmt.Println(crypto.PubkeyToAddress(key.PublicKey).Hex())
		return nil
	}

	keyHex, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && keyHex == "" {
		return fmt.Errorf("reading key from stdin: %w", err)
	}

	blob, err := keystore.Encrypt(strings.TrimSpace(keyHex), password)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(out, blob, 0o600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}

	fmt.Printf("wrote %s\n", out)
	return nil
}
