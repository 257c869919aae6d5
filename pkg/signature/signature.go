// Package signature signs and verifies short strings on behalf of compute resources.
//
// Each compute resource has its own key, derived from the master key and its id.
// The master key never leaves the server; compute resource operators receive
// only their derived key (see `protocaasctl resource-key`).
//
// A signature is HMAC-SHA256 over "{computeResourceId}.{payload}", hex encoded.
package signature

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

// MinKeyLength is the minimum length of a master key, in bytes.
const MinKeyLength = 32

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedCode    = fmt.Errorf("%w: malformed registration code", ErrInvalidSignature)
	ErrCodeExpired      = fmt.Errorf("%w: registration code is out of the window", ErrInvalidSignature)
	ErrShortKey         = fmt.Errorf("master key should be %d bytes or longer", MinKeyLength)
)

// Key is a signing key of a compute resource.
type Key []byte

// Derive the key of the compute resource from the master key.
func Derive(master []byte, computeResourceId string) (Key, error) {
	if len(master) < MinKeyLength {
		return nil, ErrShortKey
	}
	k, err := jwt.SigningMethodHS256.Sign("compute-resource:"+computeResourceId, master)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return Key(k), nil
}

// ParseKey decodes a hex encoded key.
func ParseKey(s string) (Key, error) {
	k, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return Key(k), nil
}

func (k Key) String() string {
	return hex.EncodeToString(k)
}

func message(computeResourceId string, payload string) string {
	return computeResourceId + "." + payload
}

// Sign the payload as the compute resource.
func (k Key) Sign(computeResourceId string, payload string) (string, error) {
	sig, err := jwt.SigningMethodHS256.Sign(message(computeResourceId, payload), []byte(k))
	if err != nil {
		return "", xe.Wrap(err)
	}
	return hex.EncodeToString(sig), nil
}

// Verify the signature.
//
// Returns
//
// - error: ErrInvalidSignature when the signature does not match.
func (k Key) Verify(computeResourceId string, payload string, signature string) error {
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) == 0 {
		return ErrInvalidSignature
	}
	if err := jwt.SigningMethodHS256.Verify(message(computeResourceId, payload), sig, []byte(k)); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// RegistrationCode issues a code to register the compute resource: "{unix time}-{signature}".
func (k Key) RegistrationCode(computeResourceId string, at time.Time) (string, error) {
	ts := strconv.FormatInt(at.Unix(), 10)
	sig, err := k.Sign(computeResourceId, ts)
	if err != nil {
		return "", err
	}
	return ts + "-" + sig, nil
}

// VerifyRegistrationCode checks the code has been issued within window from now, and signed by the key.
//
// A code issued exactly `window` ago (or ahead) is accepted.
//
// Returns
//
// - error: ErrMalformedCode, ErrCodeExpired or ErrInvalidSignature.
// All of them are ErrInvalidSignature.
func (k Key) VerifyRegistrationCode(computeResourceId string, code string, now time.Time, window time.Duration) error {
	ts, sig, ok := strings.Cut(code, "-")
	if !ok {
		return ErrMalformedCode
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrMalformedCode
	}

	diff := now.Sub(time.Unix(unix, 0))
	if diff < 0 {
		diff = -diff
	}
	if window < diff {
		return ErrCodeExpired
	}
	return k.Verify(computeResourceId, ts, sig)
}

// Signer signs and verifies with the keys derived from the master key.
type Signer struct {
	keys KeySource
}

func New(keys KeySource) *Signer {
	return &Signer{keys: keys}
}

// ResourceKey returns the key of the compute resource.
func (s *Signer) ResourceKey(ctx context.Context, computeResourceId string) (Key, error) {
	master, err := s.keys.MasterKey(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return Derive(master, computeResourceId)
}

func (s *Signer) Sign(ctx context.Context, computeResourceId string, payload string) (string, error) {
	k, err := s.ResourceKey(ctx, computeResourceId)
	if err != nil {
		return "", err
	}
	return k.Sign(computeResourceId, payload)
}

// Verify the signature made by the compute resource.
//
// Returns
//
// - error: ErrInvalidSignature when it does not match.
// Other errors are from the key source.
func (s *Signer) Verify(ctx context.Context, computeResourceId string, payload string, signature string) error {
	k, err := s.ResourceKey(ctx, computeResourceId)
	if err != nil {
		return err
	}
	return k.Verify(computeResourceId, payload, signature)
}

func (s *Signer) VerifyRegistrationCode(ctx context.Context, computeResourceId string, code string, now time.Time, window time.Duration) error {
	k, err := s.ResourceKey(ctx, computeResourceId)
	if err != nil {
		return err
	}
	return k.VerifyRegistrationCode(computeResourceId, code, now, window)
}
