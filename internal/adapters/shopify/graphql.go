package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"shopify-reconciler/internal/adapters/shopify/dto"
	"shopify-reconciler/internal/infra/httpx"
)

// GraphQLClient talks to the Admin GraphQL API.
type GraphQLClient struct {
	*clientBase
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

func (c *GraphQLClient) endpoint() string {
	return c.baseURL + "/graphql.json"
}

// graphqlRequest posts one operation. A THROTTLED errors array is surfaced
// to the retry loop as a transient failure; any other errors array is
// terminal.
func (c *GraphQLClient) graphqlRequest(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	if c == nil || c.clientBase == nil {
		return errors.New("shopify client is nil")
	}
	bodyBytes, err := json.Marshal(graphQLRequest{
		Query:     strings.TrimSpace(query),
		Variables: variables,
	})
	if err != nil {
		return err
	}

	target := "shopify graphql " + operation
	resp, err := c.httpClient.Do(ctx, httpx.Request{
		Target: target,
		Method: http.MethodPost,
		URL:    c.endpoint(),
		Header: c.headers(),
		Body:   bodyBytes,
		Inspect: func(resp *httpx.Response) error {
			var envelope dto.GraphQLResponse[json.RawMessage]
			if err := json.Unmarshal(resp.Body, &envelope); err != nil {
				return fmt.Errorf("%s: decode response: %w", target, err)
			}
			if len(envelope.Errors) == 0 {
				return nil
			}
			if isThrottleGraphQLError(envelope.Errors) {
				return &httpx.ThrottledError{Target: target, Message: formatGraphQLErrors(envelope.Errors)}
			}
			return &GraphQLErrors{Errors: envelope.Errors}
		},
	})
	if err != nil {
		return err
	}

	var envelope dto.GraphQLResponse[json.RawMessage]
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return errors.New("shopify graphql response missing data")
	}
	return json.Unmarshal(envelope.Data, out)
}
