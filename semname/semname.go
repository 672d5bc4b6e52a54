// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semname

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
)

// PayloadSize is the number of random bytes drawn for each name.  This is 128 bits of entropy,
// and it is also the payload size of a KSUID.
const PayloadSize = 16

// Separator is the leading character of every generated name.
const Separator = "/"

// ErrInvalidPrefix is returned when a Generator's prefix could not appear in a portable name.
var ErrInvalidPrefix = errors.New("semaphore name prefixes must not contain separators or NUL")

// Encoder renders random bytes as text.  Implementations must produce output that is free of
// separators, NUL and padding characters.
type Encoder interface {
	Encode(payload []byte) (string, error)
}

// EncoderFunc is a function type that implements Encoder.
type EncoderFunc func([]byte) (string, error)

func (ef EncoderFunc) Encode(payload []byte) (string, error) {
	return ef(payload)
}

// KSUIDLength is the length of every name component produced by KSUIDEncoder.
const KSUIDLength = 27

// KSUIDEncoder encodes a payload as the base62 text of a KSUID.  The KSUID timestamp comes
// from Now, or time.Now if unset.  Output is always KSUIDLength characters.
type KSUIDEncoder struct {
	Now func() time.Time
}

func (ke KSUIDEncoder) now() time.Time {
	if ke.Now != nil {
		return ke.Now()
	}

	return time.Now()
}

func (ke KSUIDEncoder) Encode(payload []byte) (string, error) {
	id, err := ksuid.FromParts(ke.now(), payload)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// Generator produces names of the form Separator + Prefix + Encode(random bytes).
// The zero value uses crypto/rand and KSUIDEncoder with no prefix.
type Generator struct {
	// Source supplies the random bytes.  If unset, crypto/rand.Reader is used.
	Source io.Reader

	// Encoder turns the random bytes into text.  If unset, KSUIDEncoder is used.
	Encoder Encoder

	// Prefix is placed between the separator and the encoded bytes.  Keep it short: some
	// platforms limit semaphore names to 31 bytes.
	Prefix string
}

func (g Generator) source() io.Reader {
	if g.Source != nil {
		return g.Source
	}

	return rand.Reader
}

func (g Generator) encoder() Encoder {
	if g.Encoder != nil {
		return g.Encoder
	}

	return KSUIDEncoder{}
}

// ValidatePrefix checks that prefix can appear inside a generated name.
func ValidatePrefix(prefix string) error {
	if strings.ContainsAny(prefix, Separator+"\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}

	return nil
}

// Generate returns a fresh name.  It fails only if the prefix is invalid, the source cannot
// supply PayloadSize bytes, or the encoder fails.
func (g Generator) Generate() (string, error) {
	if err := ValidatePrefix(g.Prefix); err != nil {
		return "", err
	}

	var payload [PayloadSize]byte
	if _, err := io.ReadFull(g.source(), payload[:]); err != nil {
		return "", fmt.Errorf("unable to read random name bytes: %w", err)
	}

	text, err := g.encoder().Encode(payload[:])
	if err != nil {
		return "", fmt.Errorf("unable to encode name: %w", err)
	}

	return Separator + g.Prefix + text, nil
}
