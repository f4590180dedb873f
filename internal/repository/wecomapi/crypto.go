package wecomapi

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// callback payloads are padded to this block size, not the AES block size.
const paddingBlock = 32

// Crypto verifies and decrypts callback messages for one application.
type Crypto struct {
	token  string
	key    []byte
	corpID string
}

// NewCrypto decodes the 43 character EncodingAESKey configured for the
// application.
func NewCrypto(token, encodingAESKey, corpID string) (*Crypto, error) {
	if token == "" {
		return nil, errors.New("wecom callback token is required")
	}

	key, err := base64.StdEncoding.DecodeString(encodingAESKey + "=")
	if err != nil {
		return nil, errors.Wrap(err, "decoding wecom encoding aes key")
	}
	if len(key) != 32 {
		return nil, errors.Errorf("wecom encoding aes key must decode to 32 bytes, got %d", len(key))
	}

	return &Crypto{token: token, key: key, corpID: corpID}, nil
}

// Signature is the sha1 of the token, timestamp, nonce and data sorted and
// concatenated.
func (c *Crypto) Signature(timestamp, nonce, data string) string {
	parts := []string{c.token, timestamp, nonce, data}
	sort.Strings(parts)

	sum := sha1.Sum([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

func (c *Crypto) Verify(signature, timestamp, nonce, data string) bool {
	want := c.Signature(timestamp, nonce, data)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(signature))) == 1
}

// Decrypt opens an Encrypt field or echostr. The plaintext is 16 random
// bytes, a big-endian message length, the message and the corp id.
func (c *Crypto) Decrypt(encrypted string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, errors.Wrap(err, "decoding wecom ciphertext")
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errors.New("wecom ciphertext is not a whole number of blocks")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, errors.Wrap(err, "creating cipher")
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, c.key[:aes.BlockSize]).CryptBlocks(plain, data)

	pad := int(plain[len(plain)-1])
	if pad < 1 || pad > paddingBlock || pad > len(plain) {
		return nil, errors.New("invalid wecom padding")
	}
	plain = plain[:len(plain)-pad]

	if len(plain) < 20 {
		return nil, errors.New("wecom plaintext too short")
	}
	content := plain[16:]

	msgLen := int(binary.BigEndian.Uint32(content[:4]))
	if msgLen > len(content)-4 {
		return nil, errors.New("wecom message length out of range")
	}

	msg := content[4 : 4+msgLen]
	if corp := string(content[4+msgLen:]); corp != c.corpID {
		return nil, errors.Errorf("wecom corp id mismatch: %q", corp)
	}

	return msg, nil
}

// Encrypt is the inverse of Decrypt.
func (c *Crypto) Encrypt(msg []byte) (string, error) {
	var buf bytes.Buffer

	random := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, random); err != nil {
		return "", errors.Wrap(err, "reading random prefix")
	}
	buf.Write(random)

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(msg)))
	buf.Write(length)
	buf.Write(msg)
	buf.WriteString(c.corpID)

	pad := paddingBlock - buf.Len()%paddingBlock
	buf.Write(bytes.Repeat([]byte{byte(pad)}, pad))

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Wrap(err, "creating cipher")
	}

	out := make([]byte, buf.Len())
	cipher.NewCBCEncrypter(block, c.key[:aes.BlockSize]).CryptBlocks(out, buf.Bytes())

	return base64.StdEncoding.EncodeToString(out), nil
}
