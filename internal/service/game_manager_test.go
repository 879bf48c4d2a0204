package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/benbeisheim/arcade-backend/internal/history"
	"github.com/benbeisheim/arcade-backend/internal/model"
	"github.com/benbeisheim/arcade-backend/internal/model/chess"
	"github.com/benbeisheim/arcade-backend/internal/model/gogame"
)

var errDisk = errors.New("disk full")

// flakyStore fails appends while fail is set.
type flakyStore struct {
	*history.MemoryStore
	mu   sync.Mutex
	fail bool
}

func (f *flakyStore) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *flakyStore) Append(gameID string, e history.Entry) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.MemoryStore.Append(gameID, e)
}

type recordingNotifier struct {
	mu    sync.Mutex
	views []GameView
}

func (r *recordingNotifier) GameUpdated(v GameView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func newService(t *testing.T, store history.Store) *GameService {
	t.Helper()
	registry := NewRegistry(gogame.Options{Size: 9, Komi: gogame.DefaultKomi})
	return NewGameService(NewGameManager(registry, store, zaptest.NewLogger(t)))
}

func chessMove(fr, fc, tr, tc int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"from":{"row":%d,"col":%d},"to":{"row":%d,"col":%d}}`, fr, fc, tr, tc))
}

var foolsMate = []json.RawMessage{
	chessMove(1, 5, 2, 5),
	chessMove(6, 4, 4, 4),
	chessMove(1, 6, 3, 6),
	chessMove(7, 3, 3, 7),
}

func TestCreateAndMove(t *testing.T) {
	store := history.NewMemoryStore()
	gs := newService(t, store)

	view, err := gs.CreateGame(model.GameTypeChess, nil)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := uuid.Parse(view.GameID); err != nil {
		t.Errorf("game id %q is not a uuid", view.GameID)
	}

	view, err = gs.MakeMove(view.GameID, chessMove(1, 4, 3, 4))
	if err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if view.Moves != 1 || view.SideToMove != model.Black {
		t.Errorf("view = moves %d side %s, want 1 black", view.Moves, view.SideToMove)
	}
	state, ok := view.State.(chess.State)
	if !ok {
		t.Fatalf("state is %T, want chess.State", view.State)
	}
	if state.EnPassant == nil || *state.EnPassant != (chess.Square{Row: 2, Col: 4}) {
		t.Errorf("en passant target = %v", state.EnPassant)
	}

	log, err := store.LoadAll(view.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Entries) != 1 || log.GameType != model.GameTypeChess {
		t.Errorf("log = %d entries of %s", len(log.Entries), log.GameType)
	}
}

func TestRejectedMovesAreNotPersisted(t *testing.T) {
	store := history.NewMemoryStore()
	gs := newService(t, store)
	view, err := gs.CreateGame(model.GameTypeChess, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		move json.RawMessage
		want error
	}{
		{"illegal", chessMove(1, 4, 4, 4), model.ErrIllegalMove},
		{"off board", chessMove(1, 4, 1, 9), model.ErrOutOfBounds},
		{"malformed", json.RawMessage(`{"from":"e2"}`), model.ErrMalformedMove},
	}
	for _, tt := range tests {
		if _, err := gs.MakeMove(view.GameID, tt.move); !errors.Is(err, tt.want) {
			t.Errorf("%s: MakeMove = %v, want %v", tt.name, err, tt.want)
		}
		if err := gs.ValidateMove(view.GameID, tt.move); !errors.Is(err, tt.want) {
			t.Errorf("%s: ValidateMove = %v, want %v", tt.name, err, tt.want)
		}
	}

	got, err := gs.GetState(view.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Moves != 0 {
		t.Errorf("moves = %d after rejected moves", got.Moves)
	}
	log, _ := store.LoadAll(view.GameID)
	if len(log.Entries) != 0 {
		t.Errorf("rejected moves were persisted: %d entries", len(log.Entries))
	}
}

func TestLookupErrors(t *testing.T) {
	gs := newService(t, history.NewMemoryStore())
	if _, err := gs.CreateGame("othello", nil); !errors.Is(err, model.ErrUnknownGameType) {
		t.Errorf("CreateGame(othello) = %v, want ErrUnknownGameType", err)
	}
	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		if _, err := gs.GetState(id); !errors.Is(err, model.ErrGameNotFound) {
			t.Errorf("GetState(%q) = %v, want ErrGameNotFound", id, err)
		}
	}
	if diff := cmp.Diff([]model.GameType{"checkers", "chess", "go", "shogi"}, gs.ListGameTypes()); diff != "" {
		t.Errorf("game types mismatch (-want +got):\n%s", diff)
	}
}

func TestTerminalGameRejectsMoves(t *testing.T) {
	gs := newService(t, history.NewMemoryStore())
	view, _ := gs.CreateGame(model.GameTypeChess, nil)
	for _, m := range foolsMate {
		var err error
		if view, err = gs.MakeMove(view.GameID, m); err != nil {
			t.Fatal(err)
		}
	}
	if !view.Terminal.Over || view.Terminal.Winner != model.Black {
		t.Fatalf("terminal = %+v, want black win", view.Terminal)
	}
	if _, err := gs.MakeMove(view.GameID, chessMove(1, 0, 2, 0)); !errors.Is(err, model.ErrTerminalState) {
		t.Errorf("move after mate = %v, want ErrTerminalState", err)
	}
}

func TestPersistenceFailureAndRetry(t *testing.T) {
	store := &flakyStore{MemoryStore: history.NewMemoryStore()}
	gs := newService(t, store)
	view, err := gs.CreateGame(model.GameTypeChess, nil)
	if err != nil {
		t.Fatal(err)
	}
	id := view.GameID

	store.setFail(true)
	view, err = gs.MakeMove(id, foolsMate[0])
	var perr *model.PersistenceError
	if !errors.As(err, &perr) || !errors.Is(err, model.ErrPersistence) || !errors.Is(err, errDisk) {
		t.Fatalf("MakeMove = %v, want *PersistenceError wrapping the disk error", err)
	}
	if perr.Pending != 1 || view.Moves != 1 || view.SideToMove != model.Black {
		t.Errorf("pending=%d moves=%d side=%s, want the move committed in memory", perr.Pending, view.Moves, view.SideToMove)
	}

	// Play continues; the new entry queues behind the first.
	if _, err := gs.MakeMove(id, foolsMate[1]); !errors.As(err, &perr) || perr.Pending != 2 {
		t.Fatalf("second MakeMove = %v, want 2 pending", err)
	}
	if _, err := gs.RetryPersistence(id); !errors.Is(err, model.ErrPersistence) {
		t.Errorf("retry while disk still failing = %v, want ErrPersistence", err)
	}

	hist, err := gs.History(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist.Entries) != 2 {
		t.Errorf("history shows %d entries, want pending ones included", len(hist.Entries))
	}

	store.setFail(false)
	view, err = gs.RetryPersistence(id)
	if err != nil {
		t.Fatalf("RetryPersistence: %v", err)
	}
	if view.PendingWrites != 0 || view.Moves != 2 {
		t.Errorf("after retry pending=%d moves=%d", view.PendingWrites, view.Moves)
	}
	log, _ := store.LoadAll(id)
	var seqs []int
	for _, e := range log.Entries {
		seqs = append(seqs, e.Seq)
	}
	if diff := cmp.Diff([]int{1, 2}, seqs); diff != "" {
		t.Errorf("persisted seqs mismatch (-want +got):\n%s", diff)
	}
}

func TestReloadReplaysHistory(t *testing.T) {
	store, err := history.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	first := newService(t, store)
	view, _ := first.CreateGame(model.GameTypeChess, nil)
	for _, m := range foolsMate {
		if view, err = first.MakeMove(view.GameID, m); err != nil {
			t.Fatal(err)
		}
	}

	second := newService(t, store)
	reloaded, err := second.GetState(view.GameID)
	if err != nil {
		t.Fatalf("GetState after restart: %v", err)
	}
	if diff := cmp.Diff(view, reloaded); diff != "" {
		t.Errorf("reloaded game differs (-live +reloaded):\n%s", diff)
	}

	saved, err := second.SavedGames()
	if err != nil || len(saved) != 1 || saved[0].GameID != view.GameID {
		t.Errorf("SavedGames = %v, %v", saved, err)
	}
}

func TestReloadDetectsTamperedHistory(t *testing.T) {
	store := history.NewMemoryStore()
	id := uuid.NewString()
	if err := store.Create(history.Meta{GameID: id, GameType: model.GameTypeChess}); err != nil {
		t.Fatal(err)
	}
	entry := history.Entry{Seq: 1, Move: chessMove(1, 4, 3, 4), Snapshot: json.RawMessage(`{"sideToMove":"white"}`)}
	if err := store.Append(id, entry); err != nil {
		t.Fatal(err)
	}

	gs := newService(t, store)
	if _, err := gs.GetState(id); !errors.Is(err, model.ErrCorruptState) {
		t.Errorf("GetState = %v, want ErrCorruptState", err)
	}

	bad := uuid.NewString()
	store.Create(history.Meta{GameID: bad, GameType: model.GameTypeChess})
	store.Append(bad, history.Entry{Seq: 1, Move: chessMove(1, 4, 5, 4), Snapshot: json.RawMessage(`{}`)})
	if _, err := gs.GetState(bad); !errors.Is(err, model.ErrCorruptState) {
		t.Errorf("GetState with an illegal logged move = %v, want ErrCorruptState", err)
	}
}

func TestStartingPosition(t *testing.T) {
	var board chess.Board
	board.Set(chess.Square{Row: 0, Col: 4}, chess.Piece{Type: chess.King, Color: model.White})
	board.Set(chess.Square{Row: 0, Col: 0}, chess.Piece{Type: chess.Rook, Color: model.White})
	board.Set(chess.Square{Row: 7, Col: 7}, chess.Piece{Type: chess.King, Color: model.Black})
	position, err := json.Marshal(chess.State{Board: board, SideToMove: model.White, FullmoveNumber: 1})
	if err != nil {
		t.Fatal(err)
	}

	store := history.NewMemoryStore()
	gs := newService(t, store)
	view, err := gs.CreateGame(model.GameTypeChess, position)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if view, err = gs.MakeMove(view.GameID, chessMove(0, 0, 6, 0)); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}

	reloaded, err := newService(t, store).GetState(view.GameID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(view, reloaded); diff != "" {
		t.Errorf("reloaded game differs (-live +reloaded):\n%s", diff)
	}

	if _, err := gs.CreateGame(model.GameTypeChess, json.RawMessage(`{"board":[]}`)); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("CreateGame(bad position) = %v, want ErrInvalidPosition", err)
	}
}

func TestStartingPositionMustBeReachable(t *testing.T) {
	gs := newService(t, history.NewMemoryStore())

	// White to move with a target behind white's own e-pawn.
	ep := chess.Square{Row: 2, Col: 4}
	stolen, err := json.Marshal(chess.State{Board: chess.NewBoard(), SideToMove: model.White, EnPassant: &ep, FullmoveNumber: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gs.CreateGame(model.GameTypeChess, stolen); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("CreateGame(en passant target) = %v, want ErrInvalidPosition", err)
	}

	var board chess.Board
	board.Set(chess.Square{Row: 0, Col: 0}, chess.Piece{Type: chess.King, Color: model.White})
	board.Set(chess.Square{Row: 4, Col: 4}, chess.Piece{Type: chess.King, Color: model.White})
	board.Set(chess.Square{Row: 7, Col: 4}, chess.Piece{Type: chess.King, Color: model.Black})
	twoKings, err := json.Marshal(chess.State{Board: board, SideToMove: model.White, FullmoveNumber: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gs.CreateGame(model.GameTypeChess, twoKings); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("CreateGame(two kings) = %v, want ErrInvalidPosition", err)
	}
}

func TestNotifierSeesEveryMove(t *testing.T) {
	registry := NewRegistry(gogame.Options{Size: 9})
	gm := NewGameManager(registry, history.NewMemoryStore(), zaptest.NewLogger(t))
	n := &recordingNotifier{}
	gm.SetNotifier(n)
	gs := NewGameService(gm)

	view, _ := gs.CreateGame(model.GameTypeGo, nil)
	gs.MakeMove(view.GameID, json.RawMessage(`{"row":4,"col":4}`))
	gs.MakeMove(view.GameID, json.RawMessage(`{"row":9,"col":9}`))
	gs.MakeMove(view.GameID, json.RawMessage(`{"pass":true}`))

	if len(n.views) != 2 {
		t.Fatalf("notifications = %d, want 2", len(n.views))
	}
	if n.views[1].Moves != 2 || n.views[1].GameType != model.GameTypeGo {
		t.Errorf("last notification = %+v", n.views[1])
	}
}

func TestConcurrentMovesKeepHistoryOrdered(t *testing.T) {
	store := history.NewMemoryStore()
	gm := NewGameManager(NewRegistry(gogame.Options{Size: 9, Komi: gogame.DefaultKomi}), store, zaptest.NewLogger(t))
	n := &recordingNotifier{}
	gm.SetNotifier(n)
	gs := NewGameService(gm)
	view, err := gs.CreateGame(model.GameTypeGo, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Points with even coordinates never touch, so every placement is legal
	// whichever side plays it.
	var wg sync.WaitGroup
	errs := make(chan error, 25)
	for r := 0; r < 9; r += 2 {
		for c := 0; c < 9; c += 2 {
			wg.Add(1)
			go func(r, c int) {
				defer wg.Done()
				_, err := gs.MakeMove(view.GameID, json.RawMessage(fmt.Sprintf(`{"row":%d,"col":%d}`, r, c)))
				errs <- err
			}(r, c)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("MakeMove: %v", err)
		}
	}

	log, err := store.LoadAll(view.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Entries) != 25 {
		t.Fatalf("entries = %d, want 25", len(log.Entries))
	}
	for i, e := range log.Entries {
		if e.Seq != i+1 {
			t.Errorf("entry %d has seq %d", i, e.Seq)
		}
	}
	if len(n.views) != 25 {
		t.Fatalf("notifications = %d, want 25", len(n.views))
	}
	for i, v := range n.views {
		if v.Moves != i+1 {
			t.Errorf("notification %d reports move %d", i, v.Moves)
		}
	}

	live, _ := gs.GetState(view.GameID)
	reloaded, err := newService(t, store).GetState(view.GameID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	a, _ := json.Marshal(live)
	b, _ := json.Marshal(reloaded)
	if string(a) != string(b) {
		t.Errorf("replayed state differs:\nlive     %s\nreloaded %s", a, b)
	}
}

func TestDeleteGame(t *testing.T) {
	store := history.NewMemoryStore()
	gs := newService(t, store)
	view, _ := gs.CreateGame(model.GameTypeCheckers, nil)

	if err := gs.DeleteGame(view.GameID); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if _, err := gs.GetState(view.GameID); !errors.Is(err, model.ErrGameNotFound) {
		t.Errorf("GetState after delete = %v, want ErrGameNotFound", err)
	}
	if err := gs.DeleteGame(view.GameID); !errors.Is(err, model.ErrGameNotFound) {
		t.Errorf("second delete = %v, want ErrGameNotFound", err)
	}
}
