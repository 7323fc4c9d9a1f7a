// Package credentials keeps third-party API tokens in the integration_tokens
// table so operators can rotate them without redeploying.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pawshearts/internal/infra"
	"pawshearts/internal/sqlinline"
)

const (
	ProviderPinterest = "pinterest"
)

// PinterestCredentials is the access token and target board for publishing.
type PinterestCredentials struct {
	AccessToken string
	BoardID     string
}

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Pinterest returns the stored Pinterest credentials. A missing row yields
// empty credentials and no error.
func (s *Store) Pinterest(ctx context.Context) (PinterestCredentials, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, ProviderPinterest)
	var creds PinterestCredentials
	if err := row.Scan(&creds.AccessToken, &creds.BoardID); err != nil {
		if infra.IsNoRows(err) {
			return PinterestCredentials{}, nil
		}
		return PinterestCredentials{}, fmt.Errorf("select pinterest token: %w", err)
	}
	creds.AccessToken = strings.TrimSpace(creds.AccessToken)
	creds.BoardID = strings.TrimSpace(creds.BoardID)
	return creds, nil
}

func (s *Store) SetPinterest(ctx context.Context, creds PinterestCredentials) error {
	token := strings.TrimSpace(creds.AccessToken)
	if token == "" {
		return errors.New("pinterest access token is required")
	}
	props := map[string]any{}
	if board := strings.TrimSpace(creds.BoardID); board != "" {
		props["board_id"] = board
	}
	return s.upsert(ctx, ProviderPinterest, token, props)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
