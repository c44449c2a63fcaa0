// Package wallet holds the key material and network identity of a BSV wallet.
//
// Key hierarchy: m/44'/236'/{account}'/{chain}/{index}, chain 0 for receive
// and chain 1 for change addresses.
package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/go-sdk/compat/bip39"
	"golang.org/x/crypto/argon2"
)

const (
	// Mnemonic entropy sizes.
	Mnemonic12Words = 128
	Mnemonic24Words = 256

	// Argon2id parameters for seed sealing.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Sealed keystore layout sizes.
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4

	keystoreVersion = 1
)

// keystoreMagic prefixes every sealed seed.
var keystoreMagic = []byte("TXGS")

// headerLen is magic + version byte.
var headerLen = len(keystoreMagic) + 1

// GenerateMnemonic creates a new BIP39 mnemonic with the specified entropy bits.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != Mnemonic12Words && entropyBits != Mnemonic24Words {
		return "", ErrInvalidEntropy
	}

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// SeedFromMnemonic derives a 64-byte BIP39 seed from mnemonic + optional passphrase.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to derive seed: %w", err)
	}
	return seed, nil
}

// SealSeed encrypts a seed for storage.
//
//	"TXGS" || version(1B) || salt(16B) || nonce(12B) || AES-GCM(seed || SHA256(seed)[:4])
//
// The header is authenticated as additional data.
func SealSeed(seed []byte, password string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate salt: %w", err)
	}
	gcm, err := sealCipher(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate nonce: %w", err)
	}

	sum := sha256.Sum256(seed)
	plaintext := append(append([]byte{}, seed...), sum[:ChecksumLen]...)

	header := append(append([]byte{}, keystoreMagic...), keystoreVersion)
	out := make([]byte, 0, headerLen+SaltLen+NonceLen+len(plaintext)+gcm.Overhead())
	out = append(out, header...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, header), nil
}

// OpenSeed reverses SealSeed.
func OpenSeed(sealed []byte, password string) ([]byte, error) {
	if len(sealed) < headerLen+SaltLen+NonceLen+ChecksumLen {
		return nil, ErrDecryptionFailed
	}
	header := sealed[:headerLen]
	if !bytes.Equal(header[:len(keystoreMagic)], keystoreMagic) || header[len(keystoreMagic)] != keystoreVersion {
		return nil, fmt.Errorf("%w: unrecognized keystore header", ErrDecryptionFailed)
	}

	rest := sealed[headerLen:]
	salt, nonce, ciphertext := rest[:SaltLen], rest[SaltLen:SaltLen+NonceLen], rest[SaltLen+NonceLen:]

	gcm, err := sealCipher(password, salt)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, header)
	if err != nil || len(plaintext) <= ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	seed := plaintext[:len(plaintext)-ChecksumLen]
	sum := sha256.Sum256(seed)
	if subtle.ConstantTimeCompare(sum[:ChecksumLen], plaintext[len(seed):]) != 1 {
		return nil, ErrChecksumMismatch
	}
	return seed, nil
}

// WriteKeystore seals seed and writes it to path with 0600 permissions.
func WriteKeystore(path string, seed []byte, password string) error {
	sealed, err := SealSeed(seed, password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create keystore directory: %w", err)
	}
	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return fmt.Errorf("wallet: write keystore: %w", err)
	}
	return nil
}

// ReadKeystore reads and opens a keystore written by WriteKeystore.
func ReadKeystore(path, password string) ([]byte, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: read keystore: %w", err)
	}
	return OpenSeed(sealed, password)
}

func sealCipher(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wallet: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("wallet: GCM creation failed: %w", err)
	}
	return gcm, nil
}
