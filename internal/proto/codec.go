// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package proto

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"

	"github.com/samber/oops"
)

// ErrMalformed marks input that arrived intact but did not decode as a valid
// request. It is recoverable: the connection stays open for another attempt.
var ErrMalformed = errors.New("malformed message")

// MaxLineBytes bounds a single wire record. Anything longer is malformed.
const MaxLineBytes = 64 * 1024

// Codec frames messages as newline-delimited JSON records over a stream.
// It is not safe for concurrent use; each session owns exactly one codec.
type Codec struct {
	r *bufio.Reader
	w io.Writer
}

// NewCodec wraps a stream transport.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		r: bufio.NewReaderSize(rw, MaxLineBytes),
		w: rw,
	}
}

// ReadRequest reads one record and decodes it. Transport errors (including
// io.EOF on peer close) pass through unwrapped; undecodable records return an
// error wrapping ErrMalformed.
func (c *Codec) ReadRequest() (*Request, error) {
	line, err := c.r.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) == 0 {
			return nil, io.EOF
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			return nil, oops.Code("PROTO_MALFORMED").
				With("reason", "record exceeds line limit").
				Wrap(ErrMalformed)
		}
		if !errors.Is(err, io.EOF) {
			return nil, err
		}
		// Trailing record without newline: fall through and decode it.
	}

	var req Request
	if jsonErr := json.Unmarshal(line, &req); jsonErr != nil {
		return nil, oops.Code("PROTO_MALFORMED").
			With("reason", jsonErr.Error()).
			Wrap(ErrMalformed)
	}
	return &req, nil
}

// WriteMessage encodes one message and appends the record delimiter.
func (c *Codec) WriteMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return oops.Code("PROTO_ENCODE_FAILED").Wrap(err)
	}
	data = append(data, '\n')
	if _, err := c.w.Write(data); err != nil {
		return oops.Code("PROTO_WRITE_FAILED").Wrap(err)
	}
	return nil
}
