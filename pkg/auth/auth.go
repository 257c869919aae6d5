// Package auth authenticates requests from compute resources, job processes and GUI users.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	kjob "github.com/protocaas/protocaas/pkg/domain/job/db"
	xe "github.com/protocaas/protocaas/pkg/errors"
	"github.com/protocaas/protocaas/pkg/signature"
)

const (
	HeaderComputeResourceId        = "compute-resource-id"
	HeaderComputeResourcePayload   = "compute-resource-payload"
	HeaderComputeResourceSignature = "compute-resource-signature"

	HeaderComputeResourceNodeId   = "compute-resource-node-id"
	HeaderComputeResourceNodeName = "compute-resource-node-name"

	HeaderJobPrivateKey = "job-private-key"

	HeaderGithubAccessToken = "github-access-token"
)

// ComputeResources verifies requests signed by compute resources.
type ComputeResources struct {
	signer *signature.Signer
}

func NewComputeResources(signer *signature.Signer) *ComputeResources {
	return &ComputeResources{signer: signer}
}

// Verify the request headers.
//
// The compute resource id in headers should be computeResourceId,
// and the payload should be path. Then, the signature should be made for them.
//
// Returns
//
// - error: ErrUnauthorized when the request is not signed properly.
// Other errors are from the key source.
func (cr *ComputeResources) Verify(ctx context.Context, header http.Header, computeResourceId string, path string) error {
	id := header.Get(HeaderComputeResourceId)
	payload := header.Get(HeaderComputeResourcePayload)
	sig := header.Get(HeaderComputeResourceSignature)

	if id == "" || id != computeResourceId || payload != path || sig == "" {
		return xe.Wrap(domerr.ErrUnauthorized)
	}
	if err := cr.signer.Verify(ctx, id, payload, sig); errors.Is(err, signature.ErrInvalidSignature) {
		return xe.Wrap(domerr.ErrUnauthorized)
	} else if err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// JobKeys verifies requests from job processes.
type JobKeys struct {
	jobs kjob.Interface
}

func NewJobKeys(jobs kjob.Interface) *JobKeys {
	return &JobKeys{jobs: jobs}
}

// Verify the key is the private key of the job.
//
// Returns
//
// - error: ErrUnauthorized when the key is wrong, or the job is not found.
func (jk *JobKeys) Verify(ctx context.Context, jobId string, key string) error {
	if key == "" {
		return xe.Wrap(domerr.ErrUnauthorized)
	}
	job, err := jk.jobs.Get(ctx, jobId)
	if errors.Is(err, domerr.ErrMissing) {
		return xe.Wrap(domerr.ErrUnauthorized)
	} else if err != nil {
		return xe.Wrap(err)
	}
	if subtle.ConstantTimeCompare([]byte(job.JobPrivateKey), []byte(key)) != 1 {
		return xe.Wrap(domerr.ErrUnauthorized)
	}
	return nil
}

// Users resolves GUI users by their access tokens.
type Users struct {
	sessions *SessionCache
}

func NewUsers(sessions *SessionCache) *Users {
	return &Users{sessions: sessions}
}

// UserId of the header.
//
// Returns
//
// - string: user id, like "github|octocat". Empty when no token is given.
//
// - error: ErrUnauthorized when the token is rejected.
func (u *Users) UserId(ctx context.Context, header http.Header) (string, error) {
	token := header.Get(HeaderGithubAccessToken)
	if token == "" {
		return "", nil
	}
	userId, err := u.sessions.UserId(ctx, token)
	if err != nil {
		return "", err
	}
	if userId == "" {
		return "", xe.Wrap(fmt.Errorf("%w: empty user id", domerr.ErrUnauthorized))
	}
	return userId, nil
}
