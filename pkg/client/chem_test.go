package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/internal/application/checker"
	httpserver "github.com/turtacn/ChemCheck/internal/interfaces/http"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemCheck/pkg/errors"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
)

// newAPIClient serves the real router backed by an in-memory checker.
func newAPIClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := checker.NewService(checker.Config{MaxBatchSize: 4}, nil)
	engine := httpserver.NewRouter(httpserver.RouterConfig{
		CheckHandler: handlers.NewCheckHandler(svc, nil),
	})
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func TestClient_Parse(t *testing.T) {
	c := newAPIClient(t)

	view, err := c.Parse(context.Background(), "2H2 + O2 -> 2H2O")
	require.NoError(t, err)
	assert.Equal(t, types.StatementKind("equation"), view.Kind)
	require.NotNil(t, view.Left)
	require.NotNil(t, view.Right)
}

func TestClient_Check(t *testing.T) {
	c := newAPIClient(t)
	ctx := context.Background()

	res, err := c.Check(ctx, "2H2 + O2 -> 2H2O", "2H2 + O2 -> 2H2O")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, "accepted", res.Reason)

	res, err = c.Check(ctx, "2H2 + O2 -> 2H2O", "H2 + O2 -> H2O")
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, "unbalanced_atoms", res.Reason)
}

func TestClient_Balance(t *testing.T) {
	c := newAPIClient(t)

	view, err := c.Balance(context.Background(), "Al + O2 -> Al2O3")
	require.NoError(t, err)
	assert.Equal(t, "4Al + 3O2 -> 2Al2O3", view.Balanced)
	assert.Equal(t, []int64{4, 3, 2}, view.Coefficients)

	_, err = c.Balance(context.Background(), "H2O")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, string(errors.ErrCodeChemNotEquation), apiErr.Code)
}

func TestClient_CheckBatch(t *testing.T) {
	c := newAPIClient(t)
	ctx := context.Background()

	view, err := c.CheckBatch(ctx, types.BatchCheckRequest{Items: []types.CheckRequest{
		{Target: "2H2 + O2 -> 2H2O", Test: "2H2 + O2 -> 2H2O"},
		{Target: "H2O", Test: "H2O2"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, view.Accepted)
	assert.Equal(t, 1, view.Rejected)

	_, err = c.CheckBatch(ctx, types.BatchCheckRequest{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	items := make([]types.CheckRequest, 5)
	for i := range items {
		items[i] = types.CheckRequest{Target: "H2O", Test: "H2O"}
	}
	_, err = c.CheckBatch(ctx, types.BatchCheckRequest{Items: items})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, string(errors.ErrCodeChemBatchTooLarge), apiErr.Code)
}

func TestClient_HistoryWithoutRepository(t *testing.T) {
	c := newAPIClient(t)
	ctx := context.Background()

	_, err := c.Submissions(ctx, 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())

	_, err = c.Submission(ctx, "")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = c.CheckAsync(ctx, types.CheckRequest{Target: "H2O", Test: "H2O"})
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
}
