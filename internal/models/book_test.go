package models_test

import (
	"errors"
	"testing"

	"plp-bookstore/internal/models"
)

func TestBookValidate(t *testing.T) {
	tests := []struct {
		name    string
		book    models.Book
		wantErr error
	}{
		{"Valid Book", models.Book{Title: "1984", Author: "George Orwell", PublishedYear: 1949, Price: 15}, nil},
		{"Free Book", models.Book{Title: "Pamphlet", Author: "Anon"}, nil},
		{"Missing Title", models.Book{Author: "George Orwell"}, models.ErrMissingTitle},
		{"Missing Author", models.Book{Title: "1984"}, models.ErrMissingAuthor},
		{"Negative Year", models.Book{Title: "1984", Author: "George Orwell", PublishedYear: -1}, models.ErrNegativeYear},
		{"Negative Price", models.Book{Title: "1984", Author: "George Orwell", Price: -0.5}, models.ErrNegativePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.book.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookString(t *testing.T) {
	b := models.Book{Title: "1984", Author: "George Orwell", Genre: "Dystopian", PublishedYear: 1949, Price: 20, InStock: true}
	want := `"1984" by George Orwell (Dystopian, 1949) $20.00, in stock`
	if got := b.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	b.InStock = false
	want = `"1984" by George Orwell (Dystopian, 1949) $20.00, out of stock`
	if got := b.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
