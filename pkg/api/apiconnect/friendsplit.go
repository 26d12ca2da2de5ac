// Package apiconnect wires the friendsplit.v1 FriendService to Connect:
// procedure names, the HTTP handler and a typed client.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/friendsplit/pkg/api"
)

// FriendServiceName is the fully-qualified name of the FriendService service.
const FriendServiceName = "friendsplit.v1.FriendService"

// Procedure paths of the FriendService RPCs.
const (
	FriendServiceStartSessionProcedure        = "/friendsplit.v1.FriendService/StartSession"
	FriendServiceEndSessionProcedure          = "/friendsplit.v1.FriendService/EndSession"
	FriendServiceGetStateProcedure            = "/friendsplit.v1.FriendService/GetState"
	FriendServiceToggleAddFriendFormProcedure = "/friendsplit.v1.FriendService/ToggleAddFriendForm"
	FriendServiceSubmitAddFriendProcedure     = "/friendsplit.v1.FriendService/SubmitAddFriend"
	FriendServiceToggleSelectProcedure        = "/friendsplit.v1.FriendService/ToggleSelect"
	FriendServiceEditSplitProcedure           = "/friendsplit.v1.FriendService/EditSplit"
	FriendServiceSubmitSplitProcedure         = "/friendsplit.v1.FriendService/SubmitSplit"
	FriendServiceListExpensesProcedure        = "/friendsplit.v1.FriendService/ListExpenses"
)

// FriendServiceHandler is implemented by the server.
type FriendServiceHandler interface {
	StartSession(context.Context, *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error)
	EndSession(context.Context, *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error)
	GetState(context.Context, *connect.Request[api.GetStateRequest]) (*connect.Response[api.GetStateResponse], error)
	ToggleAddFriendForm(context.Context, *connect.Request[api.ToggleAddFriendFormRequest]) (*connect.Response[api.ToggleAddFriendFormResponse], error)
	SubmitAddFriend(context.Context, *connect.Request[api.SubmitAddFriendRequest]) (*connect.Response[api.SubmitAddFriendResponse], error)
	ToggleSelect(context.Context, *connect.Request[api.ToggleSelectRequest]) (*connect.Response[api.ToggleSelectResponse], error)
	EditSplit(context.Context, *connect.Request[api.EditSplitRequest]) (*connect.Response[api.EditSplitResponse], error)
	SubmitSplit(context.Context, *connect.Request[api.SubmitSplitRequest]) (*connect.Response[api.SubmitSplitResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
}

// NewFriendServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewFriendServiceHandler(svc FriendServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	handlers := map[string]http.Handler{
		FriendServiceStartSessionProcedure:        connect.NewUnaryHandler(FriendServiceStartSessionProcedure, svc.StartSession, opts...),
		FriendServiceEndSessionProcedure:          connect.NewUnaryHandler(FriendServiceEndSessionProcedure, svc.EndSession, opts...),
		FriendServiceGetStateProcedure:            connect.NewUnaryHandler(FriendServiceGetStateProcedure, svc.GetState, opts...),
		FriendServiceToggleAddFriendFormProcedure: connect.NewUnaryHandler(FriendServiceToggleAddFriendFormProcedure, svc.ToggleAddFriendForm, opts...),
		FriendServiceSubmitAddFriendProcedure:     connect.NewUnaryHandler(FriendServiceSubmitAddFriendProcedure, svc.SubmitAddFriend, opts...),
		FriendServiceToggleSelectProcedure:        connect.NewUnaryHandler(FriendServiceToggleSelectProcedure, svc.ToggleSelect, opts...),
		FriendServiceEditSplitProcedure:           connect.NewUnaryHandler(FriendServiceEditSplitProcedure, svc.EditSplit, opts...),
		FriendServiceSubmitSplitProcedure:         connect.NewUnaryHandler(FriendServiceSubmitSplitProcedure, svc.SubmitSplit, opts...),
		FriendServiceListExpensesProcedure:        connect.NewUnaryHandler(FriendServiceListExpensesProcedure, svc.ListExpenses, opts...),
	}

	return "/" + FriendServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// FriendServiceClient is a client for the friendsplit.v1.FriendService service.
type FriendServiceClient interface {
	FriendServiceHandler
}

// NewFriendServiceClient constructs a client for the FriendService at baseURL
// (e.g. http://localhost:8080).
func NewFriendServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FriendServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &friendServiceClient{
		startSession:        connect.NewClient[api.StartSessionRequest, api.StartSessionResponse](httpClient, baseURL+FriendServiceStartSessionProcedure, opts...),
		endSession:          connect.NewClient[api.EndSessionRequest, api.EndSessionResponse](httpClient, baseURL+FriendServiceEndSessionProcedure, opts...),
		getState:            connect.NewClient[api.GetStateRequest, api.GetStateResponse](httpClient, baseURL+FriendServiceGetStateProcedure, opts...),
		toggleAddFriendForm: connect.NewClient[api.ToggleAddFriendFormRequest, api.ToggleAddFriendFormResponse](httpClient, baseURL+FriendServiceToggleAddFriendFormProcedure, opts...),
		submitAddFriend:     connect.NewClient[api.SubmitAddFriendRequest, api.SubmitAddFriendResponse](httpClient, baseURL+FriendServiceSubmitAddFriendProcedure, opts...),
		toggleSelect:        connect.NewClient[api.ToggleSelectRequest, api.ToggleSelectResponse](httpClient, baseURL+FriendServiceToggleSelectProcedure, opts...),
		editSplit:           connect.NewClient[api.EditSplitRequest, api.EditSplitResponse](httpClient, baseURL+FriendServiceEditSplitProcedure, opts...),
		submitSplit:         connect.NewClient[api.SubmitSplitRequest, api.SubmitSplitResponse](httpClient, baseURL+FriendServiceSubmitSplitProcedure, opts...),
		listExpenses:        connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+FriendServiceListExpensesProcedure, opts...),
	}
}

type friendServiceClient struct {
	startSession        *connect.Client[api.StartSessionRequest, api.StartSessionResponse]
	endSession          *connect.Client[api.EndSessionRequest, api.EndSessionResponse]
	getState            *connect.Client[api.GetStateRequest, api.GetStateResponse]
	toggleAddFriendForm *connect.Client[api.ToggleAddFriendFormRequest, api.ToggleAddFriendFormResponse]
	submitAddFriend     *connect.Client[api.SubmitAddFriendRequest, api.SubmitAddFriendResponse]
	toggleSelect        *connect.Client[api.ToggleSelectRequest, api.ToggleSelectResponse]
	editSplit           *connect.Client[api.EditSplitRequest, api.EditSplitResponse]
	submitSplit         *connect.Client[api.SubmitSplitRequest, api.SubmitSplitResponse]
	listExpenses        *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
}

func (c *friendServiceClient) StartSession(ctx context.Context, req *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error) {
	return c.startSession.CallUnary(ctx, req)
}

func (c *friendServiceClient) EndSession(ctx context.Context, req *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error) {
	return c.endSession.CallUnary(ctx, req)
}

func (c *friendServiceClient) GetState(ctx context.Context, req *connect.Request[api.GetStateRequest]) (*connect.Response[api.GetStateResponse], error) {
	return c.getState.CallUnary(ctx, req)
}

func (c *friendServiceClient) ToggleAddFriendForm(ctx context.Context, req *connect.Request[api.ToggleAddFriendFormRequest]) (*connect.Response[api.ToggleAddFriendFormResponse], error) {
	return c.toggleAddFriendForm.CallUnary(ctx, req)
}

func (c *friendServiceClient) SubmitAddFriend(ctx context.Context, req *connect.Request[api.SubmitAddFriendRequest]) (*connect.Response[api.SubmitAddFriendResponse], error) {
	return c.submitAddFriend.CallUnary(ctx, req)
}

func (c *friendServiceClient) ToggleSelect(ctx context.Context, req *connect.Request[api.ToggleSelectRequest]) (*connect.Response[api.ToggleSelectResponse], error) {
	return c.toggleSelect.CallUnary(ctx, req)
}

func (c *friendServiceClient) EditSplit(ctx context.Context, req *connect.Request[api.EditSplitRequest]) (*connect.Response[api.EditSplitResponse], error) {
	return c.editSplit.CallUnary(ctx, req)
}

func (c *friendServiceClient) SubmitSplit(ctx context.Context, req *connect.Request[api.SubmitSplitRequest]) (*connect.Response[api.SubmitSplitResponse], error) {
	return c.submitSplit.CallUnary(ctx, req)
}

func (c *friendServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}
