package wishlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hitoshi/libman/internal/model"
	"github.com/hitoshi/libman/internal/repository"
)

type mockWishlistRepo struct {
	findByIDFunc          func(ctx context.Context, id string) (*model.WishlistEntry, error)
	findByUserAndBookFunc func(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error)
	createFunc            func(ctx context.Context, entry *model.WishlistEntry) error
	listFunc              func(ctx context.Context, userID string) ([]repository.WishlistEntryWithBook, error)
	deleteFunc            func(ctx context.Context, id string) error
}

func (m *mockWishlistRepo) FindByID(ctx context.Context, id string) (*model.WishlistEntry, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockWishlistRepo) FindByUserAndBook(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error) {
	if m.findByUserAndBookFunc != nil {
		return m.findByUserAndBookFunc(ctx, userID, bookID)
	}
	return nil, nil
}

func (m *mockWishlistRepo) Create(ctx context.Context, entry *model.WishlistEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	return nil
}

func (m *mockWishlistRepo) ListByUserWithBookInfo(ctx context.Context, userID string) ([]repository.WishlistEntryWithBook, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockWishlistRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockBookRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Book, error)
}

func (m *mockBookRepo) FindByID(ctx context.Context, id string) (*model.Book, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBookRepo) List(ctx context.Context, keyword string, limit, offset int) ([]*model.Book, error) {
	return nil, nil
}

func (m *mockBookRepo) Count(ctx context.Context, keyword string) (int, error) {
	return 0, nil
}

func (m *mockBookRepo) CountByCategory(ctx context.Context) ([]model.CategoryCount, error) {
	return nil, nil
}

func (m *mockBookRepo) Create(ctx context.Context, book *model.Book) error { return nil }

func (m *mockBookRepo) Update(ctx context.Context, book *model.Book) error { return nil }

func (m *mockBookRepo) SetAvailable(ctx context.Context, bookID string, available bool) error {
	return nil
}

func (m *mockBookRepo) Delete(ctx context.Context, id string) error { return nil }

func existingBook(id string) *mockBookRepo {
	return &mockBookRepo{
		findByIDFunc: func(ctx context.Context, bookID string) (*model.Book, error) {
			if bookID == id {
				return &model.Book{ID: id}, nil
			}
			return nil, nil
		},
	}
}

func newTestService(wishlistRepo *mockWishlistRepo, bookRepo *mockBookRepo) *Service {
	return NewService(wishlistRepo, bookRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIErrorを期待したが異なるエラーが返された: %v", err)
	}
	return apiErr.Code
}

// TestService_Add は読みたい本リストへの追加を検証する。
func TestService_Add(t *testing.T) {
	var created *model.WishlistEntry
	repo := &mockWishlistRepo{
		createFunc: func(ctx context.Context, entry *model.WishlistEntry) error {
			created = entry
			return nil
		},
	}
	svc := newTestService(repo, existingBook("book-1"))

	entry, err := svc.Add(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if entry.UserID != "user-1" || entry.BookID != "book-1" {
		t.Errorf("エントリの帰属が不正: %+v", entry)
	}
	if created == nil {
		t.Fatal("リポジトリにエントリが保存されていない")
	}
}

// TestService_Add_Duplicate は重複追加の拒否を検証する。
func TestService_Add_Duplicate(t *testing.T) {
	repo := &mockWishlistRepo{
		findByUserAndBookFunc: func(ctx context.Context, userID, bookID string) (*model.WishlistEntry, error) {
			return &model.WishlistEntry{ID: "entry-1", UserID: userID, BookID: bookID}, nil
		},
	}
	svc := newTestService(repo, existingBook("book-1"))

	_, err := svc.Add(context.Background(), "user-1", "book-1")
	if code := errCode(t, err); code != model.ErrCodeWishlistDuplicate {
		t.Errorf("code = %q, want %q", code, model.ErrCodeWishlistDuplicate)
	}
}

// TestService_Add_BookNotFound は存在しない蔵書の追加を検証する。
func TestService_Add_BookNotFound(t *testing.T) {
	svc := newTestService(&mockWishlistRepo{}, &mockBookRepo{})

	_, err := svc.Add(context.Background(), "user-1", "book-missing")
	if code := errCode(t, err); code != model.ErrCodeBookNotFound {
		t.Errorf("code = %q, want %q", code, model.ErrCodeBookNotFound)
	}
}

// TestService_Remove は本人のエントリ削除と他人のエントリ保護を検証する。
func TestService_Remove(t *testing.T) {
	deleted := false
	repo := &mockWishlistRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.WishlistEntry, error) {
			return &model.WishlistEntry{ID: id, UserID: "user-1"}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(repo, &mockBookRepo{})

	if err := svc.Remove(context.Background(), "user-1", "entry-1"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if !deleted {
		t.Error("エントリが削除されていない")
	}

	err := svc.Remove(context.Background(), "user-2", "entry-1")
	if code := errCode(t, err); code != model.ErrCodeForbidden {
		t.Errorf("他人のエントリ削除のcode = %q, want %q", code, model.ErrCodeForbidden)
	}
}

// TestService_Remove_NotFound は存在しないエントリの削除を検証する。
func TestService_Remove_NotFound(t *testing.T) {
	svc := newTestService(&mockWishlistRepo{}, &mockBookRepo{})

	err := svc.Remove(context.Background(), "user-1", "entry-missing")
	if code := errCode(t, err); code != model.ErrCodeWishlistNotFound {
		t.Errorf("code = %q, want %q", code, model.ErrCodeWishlistNotFound)
	}
}
