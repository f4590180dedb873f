// Package callback serves the WeCom application callback URL: the GET
// handshake that proves ownership of the URL and the POST messages users send
// to the application.
package callback

import (
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"manpower/backend/foundation/web"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	maxBodySize = 1 << 20

	pingReply    = "pong"
	unknownReply = "ไม่เข้าใจคำสั่งค่ะ"
)

type envelope struct {
	XMLName xml.Name `xml:"xml"`
	Encrypt string   `xml:"Encrypt"`
}

// Message is the decrypted body of a callback POST.
type Message struct {
	XMLName      xml.Name `xml:"xml"`
	ToUserName   string   `xml:"ToUserName"`
	FromUserName string   `xml:"FromUserName"`
	MsgType      string   `xml:"MsgType"`
	Content      string   `xml:"Content"`
	Event        string   `xml:"Event"`
}

type Controller struct {
	messenger Messenger
	decrypter Decrypter
}

func NewController(messenger Messenger, decrypter Decrypter) *Controller {
	return &Controller{messenger, decrypter}
}

// Verify answers the URL handshake with the decrypted echostr.
func (uc Controller) Verify(c *web.Context) error {
	signature := c.Query("msg_signature")
	timestamp := c.Query("timestamp")
	nonce := c.Query("nonce")
	echo := c.Query("echostr")

	if echo == "" || !uc.decrypter.Verify(signature, timestamp, nonce, echo) {
		c.Log().Warn("wecom callback signature mismatch", zap.String("method", http.MethodGet))
		c.String(http.StatusBadRequest, "signature mismatch")
		return nil
	}

	plain, err := uc.decrypter.Decrypt(echo)
	if err != nil {
		c.Log().Warn("wecom callback echostr rejected", zap.Error(err))
		c.String(http.StatusBadRequest, "fail")
		return nil
	}

	c.String(http.StatusOK, string(plain))
	return nil
}

// Receive decrypts a message and replies to text messages through the
// application. Other message types and events are acknowledged only.
func (uc Controller) Receive(c *web.Context) error {
	msg, err := uc.open(c)
	if err != nil {
		c.Log().Warn("wecom callback rejected", zap.Error(err))
		c.String(http.StatusBadRequest, "fail")
		return nil
	}

	c.Log().Info("wecom callback message",
		zap.String("from", msg.FromUserName),
		zap.String("type", msg.MsgType))

	if msg.MsgType == "text" && msg.FromUserName != "" {
		if err := uc.messenger.SendText(c.Ctx, msg.FromUserName, Reply(msg.Content)); err != nil {
			c.Log().Warn("wecom callback reply failed",
				zap.String("to", msg.FromUserName),
				zap.Error(err))
		}
	}

	c.String(http.StatusOK, "success")
	return nil
}

func (uc Controller) open(c *web.Context) (Message, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		return Message{}, errors.Wrap(err, "reading body")
	}

	var env envelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return Message{}, errors.Wrap(err, "decoding envelope")
	}
	if env.Encrypt == "" {
		return Message{}, errors.New("envelope has no Encrypt element")
	}

	if !uc.decrypter.Verify(c.Query("msg_signature"), c.Query("timestamp"), c.Query("nonce"), env.Encrypt) {
		return Message{}, errors.New("signature mismatch")
	}

	plain, err := uc.decrypter.Decrypt(env.Encrypt)
	if err != nil {
		return Message{}, err
	}

	var msg Message
	if err := xml.Unmarshal(plain, &msg); err != nil {
		return Message{}, errors.Wrap(err, "decoding message")
	}

	return msg, nil
}

// Reply is the answer to a text message.
func Reply(content string) string {
	if strings.TrimSpace(content) == "ping" {
		return pingReply
	}
	return unknownReply
}
