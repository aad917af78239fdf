package network

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/errors"
)

// Codec encodes the peer messages for one content type.
type Codec interface {
	ContentType() string
	Marshal(interface{}) ([]byte, error)
	Unmarshal([]byte, interface{}) error
}

type JSONCodec struct{}

func (JSONCodec) ContentType() string {
	return common.ContentTypeJSON
}

func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	return b, pkgerrors.Wrap(err, "failed to encode json")
}

func (JSONCodec) Unmarshal(b []byte, v interface{}) error {
	return pkgerrors.Wrap(json.Unmarshal(b, v), "failed to decode json")
}

type MsgpackCodec struct{}

func (MsgpackCodec) ContentType() string {
	return common.ContentTypeMsgpack
}

func (MsgpackCodec) Marshal(v interface{}) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	return b, pkgerrors.Wrap(err, "failed to encode msgpack")
}

func (MsgpackCodec) Unmarshal(b []byte, v interface{}) error {
	return pkgerrors.Wrap(msgpack.Unmarshal(b, v), "failed to decode msgpack")
}

var DefaultCodec Codec = JSONCodec{}

var codecs = map[string]Codec{
	common.ContentTypeJSON:    JSONCodec{},
	common.ContentTypeMsgpack: MsgpackCodec{},
	"application/x-msgpack":   MsgpackCodec{},
}

// GetCodec finds the codec of the content type, without parameters; an
// empty content type means json.
func GetCodec(contentType string) (Codec, error) {
	if len(contentType) < 1 {
		return DefaultCodec, nil
	}

	codec, found := codecs[contentType]
	if !found {
		return nil, errors.MessageUnknownType.Clone().SetData("content-type", contentType)
	}

	return codec, nil
}

// DecodeMessage decodes and checks the message; any failure is
// `errors.MessageMalformed`.
func DecodeMessage(codec Codec, b []byte) (m consensus.Message, err error) {
	var raw consensus.RawMessage
	if err = codec.Unmarshal(b, &raw); err != nil {
		err = errors.MessageMalformed.Clone().SetData("error", err.Error())
		return
	}

	return raw.Message()
}
