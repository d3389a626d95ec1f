package services

import (
	"context"
	"net/url"

	"journal-desk/models"
)

// RESTClient is the journal backend transport. *client.Client implements it.
type RESTClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) (*models.Pagination, error)
	Post(ctx context.Context, path string, payload, out any) error
	Put(ctx context.Context, path string, payload, out any) error
	Patch(ctx context.Context, path string, payload, out any) error
	Delete(ctx context.Context, path string, out any) error
}
