package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/friendsplit/internal/ledger"
	"github.com/mmynk/friendsplit/internal/middleware"
	"github.com/mmynk/friendsplit/internal/storage"
	"github.com/mmynk/friendsplit/pkg/api"
	"github.com/mmynk/friendsplit/pkg/api/apiconnect"
)

// Ensure FriendService implements the Connect handler interface
var _ apiconnect.FriendServiceHandler = (*FriendService)(nil)

// FriendService implements the Connect FriendService
type FriendService struct {
	sessions *SessionManager
}

// NewFriendService creates a new FriendService serving the given sessions.
func NewFriendService(sessions *SessionManager) *FriendService {
	return &FriendService{sessions: sessions}
}

// withSession runs fn on the caller's session.
func (s *FriendService) withSession(ctx context.Context, fn func(*ledger.Session) error) error {
	sessionID := middleware.GetSessionID(ctx)
	if sessionID == "" {
		return connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("session required"))
	}
	return s.sessions.With(ctx, sessionID, fn)
}

// toConnectError maps ledger and storage errors to Connect codes.
func toConnectError(op string, err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case ledger.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrNoSelection):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	}
	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}

// snapshot captures the session state in wire form.
func snapshot(ctx context.Context, sess *ledger.Session) (*api.State, error) {
	snap, err := sess.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return toState(snap), nil
}

// StartSession creates an empty session and returns the token that identifies it.
func (s *FriendService) StartSession(ctx context.Context, req *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error) {
	id, tok, expiresAt, err := s.sessions.Start(ctx)
	if err != nil {
		return nil, toConnectError("StartSession", err)
	}

	var state *api.State
	err = s.sessions.With(ctx, id, func(sess *ledger.Session) error {
		state, err = snapshot(ctx, sess)
		return err
	})
	if err != nil {
		return nil, toConnectError("StartSession", err)
	}

	return connect.NewResponse(&api.StartSessionResponse{
		Token:     tok,
		ExpiresAt: expiresAt.Unix(),
		State:     state,
	}), nil
}

// EndSession discards the caller's session.
func (s *FriendService) EndSession(ctx context.Context, req *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error) {
	if err := s.sessions.End(ctx, middleware.GetSessionID(ctx)); err != nil {
		return nil, toConnectError("EndSession", err)
	}
	return connect.NewResponse(&api.EndSessionResponse{}), nil
}

// GetState returns the current session state.
func (s *FriendService) GetState(ctx context.Context, req *connect.Request[api.GetStateRequest]) (*connect.Response[api.GetStateResponse], error) {
	var state *api.State
	err := s.withSession(ctx, func(sess *ledger.Session) (err error) {
		state, err = snapshot(ctx, sess)
		return err
	})
	if err != nil {
		return nil, toConnectError("GetState", err)
	}
	return connect.NewResponse(&api.GetStateResponse{State: state}), nil
}

// ToggleAddFriendForm opens the add-friend form, or closes it when open.
func (s *FriendService) ToggleAddFriendForm(ctx context.Context, req *connect.Request[api.ToggleAddFriendFormRequest]) (*connect.Response[api.ToggleAddFriendFormResponse], error) {
	var state *api.State
	err := s.withSession(ctx, func(sess *ledger.Session) (err error) {
		sess.ToggleAddFriend()
		state, err = snapshot(ctx, sess)
		return err
	})
	if err != nil {
		return nil, toConnectError("ToggleAddFriendForm", err)
	}
	return connect.NewResponse(&api.ToggleAddFriendFormResponse{State: state}), nil
}

// SubmitAddFriend adds a friend with a zero balance.
func (s *FriendService) SubmitAddFriend(ctx context.Context, req *connect.Request[api.SubmitAddFriendRequest]) (*connect.Response[api.SubmitAddFriendResponse], error) {
	var (
		state    *api.State
		friendID string
	)
	err := s.withSession(ctx, func(sess *ledger.Session) error {
		friend, err := sess.SubmitAddFriend(ctx, req.Msg.Name, req.Msg.AvatarURL)
		if err != nil {
			return err
		}
		friendID = friend.ID
		state, err = snapshot(ctx, sess)
		return err
	})
	if err != nil {
		return nil, toConnectError("SubmitAddFriend", err)
	}

	slog.Info("Friend added", "session_id", middleware.GetSessionID(ctx), "friend_id", friendID)

	return connect.NewResponse(&api.SubmitAddFriendResponse{
		Friend: findFriend(state, friendID),
		State:  state,
	}), nil
}

// ToggleSelect selects a friend for splitting, or deselects it when already selected.
func (s *FriendService) ToggleSelect(ctx context.Context, req *connect.Request[api.ToggleSelectRequest]) (*connect.Response[api.ToggleSelectResponse], error) {
	if req.Msg.FriendID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("friend_id required"))
	}

	var state *api.State
	err := s.withSession(ctx, func(sess *ledger.Session) error {
		if _, err := sess.ToggleSelect(ctx, req.Msg.FriendID); err != nil {
			return err
		}
		var err error
		state, err = snapshot(ctx, sess)
		return err
	})
	if err != nil {
		return nil, toConnectError("ToggleSelect", err)
	}
	return connect.NewResponse(&api.ToggleSelectResponse{State: state}), nil
}

// EditSplit sets one field of the pending split from text input.
func (s *FriendService) EditSplit(ctx context.Context, req *connect.Request[api.EditSplitRequest]) (*connect.Response[api.EditSplitResponse], error) {
	var state *api.State
	err := s.withSession(ctx, func(sess *ledger.Session) error {
		var err error
		switch req.Msg.Field {
		case api.FieldBillTotal:
			err = sess.SetBillTotal(req.Msg.Value)
		case api.FieldPayerShare:
			err = sess.SetPayerShare(req.Msg.Value)
		case api.FieldPayer:
			err = sess.SetPayer(req.Msg.Value)
		default:
			return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown split field %q", req.Msg.Field))
		}
		if err != nil {
			return err
		}
		state, err = snapshot(ctx, sess)
		return err
	})
	if err != nil {
		return nil, toConnectError("EditSplit", err)
	}
	return connect.NewResponse(&api.EditSplitResponse{State: state}), nil
}

// SubmitSplit applies the pending split to the selected friend's balance.
func (s *FriendService) SubmitSplit(ctx context.Context, req *connect.Request[api.SubmitSplitRequest]) (*connect.Response[api.SubmitSplitResponse], error) {
	var (
		state  *api.State
		result *ledger.SplitResult
	)
	err := s.withSession(ctx, func(sess *ledger.Session) error {
		var err error
		result, err = sess.SubmitSplit(ctx)
		if err != nil {
			return err
		}
		state, err = snapshot(ctx, sess)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		// The selected friend vanished from the registry: a broken invariant,
		// not something the caller can fix.
		slog.Error("SubmitSplit failed", "session_id", middleware.GetSessionID(ctx), "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if err != nil {
		return nil, toConnectError("SubmitSplit", err)
	}

	resp := &api.SubmitSplitResponse{
		Friend: findFriend(state, result.Friend.ID),
		Delta:  result.Delta,
		State:  state,
	}
	if result.Expense != nil {
		expense := toExpense(*result.Expense)
		resp.Expense = &expense
	}

	slog.Info("Split submitted",
		"session_id", middleware.GetSessionID(ctx),
		"friend_id", result.Friend.ID,
		"balance", result.Friend.Balance.String(),
	)

	return connect.NewResponse(resp), nil
}

// ListExpenses returns the splits recorded against a friend, newest first.
func (s *FriendService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if req.Msg.FriendID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("friend_id required"))
	}

	var expenses []api.Expense
	err := s.withSession(ctx, func(sess *ledger.Session) error {
		records, err := sess.Registry().Expenses(ctx, req.Msg.FriendID)
		if err != nil {
			return err
		}
		expenses = make([]api.Expense, len(records))
		for i, e := range records {
			expenses[i] = toExpense(e)
		}
		return nil
	})
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: expenses}), nil
}
