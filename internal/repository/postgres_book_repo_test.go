package repository

import (
	"testing"

	"github.com/hitoshi/libman/internal/model"
)

// PostgresBookRepoはBookRepositoryインターフェースを満たすことを検証
func TestPostgresBookRepo_ImplementsInterface(t *testing.T) {
	var _ BookRepository = (*PostgresBookRepo)(nil)
}

// NewPostgresBookRepoが正しく初期化されることを検証
func TestNewPostgresBookRepo_Initializes(t *testing.T) {
	repo := NewPostgresBookRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Bookモデルのフィールドが正しく構築されることを検証
func TestPostgresBookRepo_BookModel_Fields(t *testing.T) {
	book := &model.Book{
		ID:              "book-id-1",
		Name:            "テスト蔵書",
		Category:        "技術書",
		Author:          "テスト著者",
		PublishingHouse: "テスト出版",
		Available:       true,
		AvailableNumber: 1,
	}

	if book.ID != "book-id-1" {
		t.Errorf("book.ID = %q, want %q", book.ID, "book-id-1")
	}
	if book.Name != "テスト蔵書" {
		t.Errorf("book.Name = %q, want %q", book.Name, "テスト蔵書")
	}
	if !book.Available {
		t.Error("book.Available should be true")
	}
}
