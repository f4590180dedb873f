package callback

import "context"

type Messenger interface {
	SendText(ctx context.Context, userID, content string) error
}

type Decrypter interface {
	Verify(signature, timestamp, nonce, data string) bool
	Decrypt(encrypted string) ([]byte, error)
}
