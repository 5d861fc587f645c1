package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength   = 32
	nonceLength = 12
	saltLength  = 32
	iterations  = 100000
)

var ErrDecrypt = errors.New("invalid passphrase or corrupted data")

type EncryptedData struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// sealer derives its AES key once per salt so repeated writes under the same
// passphrase do not pay for PBKDF2 every time.
type sealer struct {
	passphrase []byte
	salt       []byte
	aead       cipher.AEAD
}

func newSealer(passphrase []byte, salt []byte) (*sealer, error) {
	if salt == nil {
		salt = make([]byte, saltLength)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, err
		}
	}

	key := pbkdf2.Key(passphrase, salt, iterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &sealer{passphrase: passphrase, salt: salt, aead: aesGCM}, nil
}

// seal encrypts data, binding it to label so a value cannot be moved to a
// different key in the file.
func (s *sealer) seal(label string, data []byte) (*EncryptedData, error) {
	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return &EncryptedData{
		Salt:       s.salt,
		Nonce:      nonce,
		Ciphertext: s.aead.Seal(nil, nonce, data, []byte(label)),
	}, nil
}

func (s *sealer) open(label string, encData *EncryptedData) ([]byte, error) {
	if encData == nil {
		return nil, errors.New("encrypted data is nil")
	}

	aead := s.aead
	if string(encData.Salt) != string(s.salt) {
		other, err := newSealer(s.passphrase, encData.Salt)
		if err != nil {
			return nil, err
		}
		aead = other.aead
	}

	if len(encData.Nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}

	plaintext, err := aead.Open(nil, encData.Nonce, encData.Ciphertext, []byte(label))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
