package codeserver

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/discountd/internal/core/domain"
)

// Opcodes.
const (
	OpGenerate byte = 1
	OpUse      byte = 2
)

// Frame sizes, excluding the opcode byte.
const (
	generateBodyLen = 3 // count uint16 LE + length uint8
	useBodyLen      = domain.CodeFieldSize
)

// Request is one decoded frame.
type Request struct {
	Op byte

	// OpGenerate
	Count  uint16
	Length uint8

	// OpUse, with padding removed.
	Code string
}

// ReadRequest reads one frame from r.
//
// An unknown opcode is returned as a Request with only Op set; its body, if
// any, is left unread. io.EOF is returned only when the stream ends before
// the opcode byte. A stream that ends inside a frame yields
// io.ErrUnexpectedEOF.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	op, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	req := &Request{Op: op}
	switch op {
	case OpGenerate:
		var body [generateBodyLen]byte
		if err := readBody(r, body[:]); err != nil {
			return nil, err
		}
		req.Count = binary.LittleEndian.Uint16(body[0:2])
		req.Length = body[2]
	case OpUse:
		var body [useBodyLen]byte
		if err := readBody(r, body[:]); err != nil {
			return nil, err
		}
		req.Code = strings.TrimSpace(string(body[:]))
	}
	return req, nil
}

func readBody(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// WriteGenerateResponse writes a generate result as one byte (0 or 1).
func WriteGenerateResponse(w io.ByteWriter, ok bool) error {
	var b byte
	if ok {
		b = 1
	}
	return w.WriteByte(b)
}

// WriteUseResponse writes a use result as one byte.
func WriteUseResponse(w io.ByteWriter, result domain.UseResult) error {
	return w.WriteByte(byte(result))
}

// WriteGenerateRequest encodes an OpGenerate frame.
func WriteGenerateRequest(w io.Writer, count uint16, length uint8) error {
	var frame [1 + generateBodyLen]byte
	frame[0] = OpGenerate
	binary.LittleEndian.PutUint16(frame[1:3], count)
	frame[3] = length
	_, err := w.Write(frame[:])
	return err
}

// WriteUseRequest encodes an OpUse frame, right-padding code with spaces.
// Codes longer than the field or containing non-ASCII bytes are rejected.
func WriteUseRequest(w io.Writer, code string) error {
	if len(code) > useBodyLen {
		return domain.ErrProtocol.WithDetails(fmt.Sprintf("code longer than %d bytes", useBodyLen))
	}
	for i := 0; i < len(code); i++ {
		if code[i] >= 0x80 {
			return domain.ErrProtocol.WithDetails("code is not ASCII")
		}
	}

	var frame [1 + useBodyLen]byte
	frame[0] = OpUse
	n := copy(frame[1:], code)
	for i := 1 + n; i < len(frame); i++ {
		frame[i] = ' '
	}
	_, err := w.Write(frame[:])
	return err
}

// ReadGenerateResponse reads a generate result byte.
func ReadGenerateResponse(r io.ByteReader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, domain.ErrProtocol.WithDetails(fmt.Sprintf("invalid generate response %d", b))
	}
}

// ReadUseResponse reads a use result byte.
func ReadUseResponse(r io.ByteReader) (domain.UseResult, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	result := domain.UseResult(b)
	if !result.Valid() {
		return 0, domain.ErrProtocol.WithDetails(fmt.Sprintf("invalid use response %d", b))
	}
	return result, nil
}
