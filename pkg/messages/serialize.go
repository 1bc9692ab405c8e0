package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

// Envelope table slots: client id, type, payload.
const (
	envelopeFields       = 3
	envelopeSlotClientID = 0
	envelopeSlotType     = 1
	envelopeSlotPayload  = 2
)

var messageTypeCodes = map[string]byte{
	MessageTypeSnapshot: 1,
	MessageTypeCommand:  2,
	MessageTypeError:    3,
}

// SerializeMessage encodes m as a zstd-compressed flatbuffer envelope with
// a JSON payload.
func SerializeMessage(m *Message) ([]byte, error) {
	b, err := SerializeMessageFlatbuffer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress message: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

func DeserializeMessage(data []byte) (*Message, error) {
	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(io.LimitReader(compReader, MaxDecompressedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed message: %v", err)
	}

	message, err := DeserializeMessageFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return message, nil
}

func SerializeMessageFlatbuffer(m *Message) ([]byte, error) {
	code, ok := messageTypeCodes[m.Type]
	if !ok {
		return nil, fmt.Errorf("unknown message type %q", m.Type)
	}

	builder := flatbuffers.NewBuilder(0)
	payload := builder.CreateByteVector(m.Payload)

	builder.StartObject(envelopeFields)
	builder.PrependUint32Slot(envelopeSlotClientID, m.ClientID, 0)
	builder.PrependByteSlot(envelopeSlotType, code, 0)
	builder.PrependUOffsetTSlot(envelopeSlotPayload, payload, 0)
	builder.Finish(builder.EndObject())

	return builder.FinishedBytes(), nil
}

// DeserializeMessageFlatbuffer reads an envelope written by
// SerializeMessageFlatbuffer. Truncated or corrupt buffers return an error.
func DeserializeMessageFlatbuffer(b []byte) (message *Message, err error) {
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("message of %d bytes is too short", len(b))
	}
	defer func() {
		if r := recover(); r != nil {
			message = nil
			err = fmt.Errorf("corrupt message: %v", r)
		}
	}()

	table := flatbuffers.Table{Bytes: b, Pos: flatbuffers.GetUOffsetT(b)}
	message = &Message{}
	if o := flatbuffers.UOffsetT(table.Offset(slotOffset(envelopeSlotClientID))); o != 0 {
		message.ClientID = table.GetUint32(o + table.Pos)
	}
	var code byte
	if o := flatbuffers.UOffsetT(table.Offset(slotOffset(envelopeSlotType))); o != 0 {
		code = table.GetByte(o + table.Pos)
	}
	for messageType, c := range messageTypeCodes {
		if c == code {
			message.Type = messageType
		}
	}
	if message.Type == "" {
		return nil, fmt.Errorf("unknown message type code %d", code)
	}
	if o := flatbuffers.UOffsetT(table.Offset(slotOffset(envelopeSlotPayload))); o != 0 {
		message.Payload = json.RawMessage(table.ByteVector(o + table.Pos))
	}

	return message, nil
}

// slotOffset is the vtable offset of a field slot.
func slotOffset(slot int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT((slot + 2) * flatbuffers.SizeVOffsetT)
}
