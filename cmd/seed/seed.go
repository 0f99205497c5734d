package main

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/bookreviews/internal/application"
	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	"github.com/xiebiao/bookreviews/internal/domain/user"
)

// Counts reports how many documents were written per collection.
type Counts struct {
	Users, Authors, Books, Reviews int
}

type reviewSeed struct {
	rating  int
	comment string
	book    string
	user    string
}

// seed creates the demo data set through the services, so every record
// passes the same checks as an API call.
func seed(ctx context.Context, svc *application.Services, now time.Time) (Counts, error) {
	var counts Counts
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	users := map[string]*user.User{
		"john": user.New("John Doe", today, "john@doe.com", "+389234323243"),
		"jack": user.New("Jack Doe", today, "jack@doe.com", "+389234223243"),
		"jane": user.New("Jane Doe", today, "jane@doe.com", "+389235323243"),
		"jill": user.New("Jill Doe", today, "jill@doe.com", "+389232323243"),
		"jess": user.New("Jess Doe", today, "jess@doe.com", "+389231323243"),
	}
	for key, u := range users {
		created, err := svc.Users.Create(ctx, u)
		if err != nil {
			return counts, fmt.Errorf("user %s: %w", key, err)
		}
		users[key] = created
		counts.Users++
	}

	authors := map[string]*author.Author{
		"pepa": author.New("PEPAA", "She is the best"),
		"ceca": author.New("CECAAA", "She is the second best"),
		"meca": author.New("MECA", "She ........"),
	}
	for key, a := range authors {
		created, err := svc.Authors.Create(ctx, a)
		if err != nil {
			return counts, fmt.Errorf("author %s: %w", key, err)
		}
		authors[key] = created
		counts.Authors++
	}

	books := map[string]*book.Book{
		"pepa_pig_1": book.New("1111111111", "Pepa Pig 1", "The Realest BlockBluster Ever!!!", today, authors["pepa"].ID),
		"pepa_pig_2": book.New("1111111121", "Pepa Pig 2", "The Realest BlockBluster Ever!!!", today, authors["pepa"].ID),
		"pepa_pig_3": book.New("111111113331", "Pepa Pig 3", "The Realest BlockBluster Ever!!!", today, authors["pepa"].ID),
		"ceca_1":     book.New("111111113334", "Ceca is trying", "Ceca is trying to come back .........", today, authors["ceca"].ID),
	}
	for key, b := range books {
		created, err := svc.Books.Create(ctx, b)
		if err != nil {
			return counts, fmt.Errorf("book %s: %w", key, err)
		}
		books[key] = created
		counts.Books++
	}

	reviews := []reviewSeed{
		{1, "JQWEKLRJ QWEKLRJ QKLWEJLKQW", "pepa_pig_1", "john"},
		{4, "JQWEKLRJ QWoajwerio ajwero iEKLRJ QKLWEJLKQW", "pepa_pig_1", "jane"},
		{5, "JQWEKLRJ QWEKLRJ asdjvolasid fQKLWEJLKQW", "pepa_pig_1", "jill"},
		{2, "JQWEKLRJ QWEKLRJ QKLWEJLKQW", "pepa_pig_2", "john"},
		{1, "JQWEKLRJ QWEKLRJ QKLWEJLKQW", "pepa_pig_3", "jill"},
		{3, "JQWEKLRJ QWEKLRJ QKLWEJLKQW", "pepa_pig_2", "jane"},
		{4, "JQWEKLRJ QWEKLRJ QKLWEJLKQW", "pepa_pig_3", "john"},
		{2, "JQWEKLRJ QWEKLRJ QKLWEJLKQW", "ceca_1", "john"},
		{4, "JQWEKLRJ QWEKLRJ QKLWEJLKQW", "pepa_pig_3", "john"},
	}
	for i, r := range reviews {
		rv := review.New(r.rating, r.comment, books[r.book].ID, users[r.user].ID)
		if _, err := svc.Reviews.Create(ctx, rv); err != nil {
			return counts, fmt.Errorf("review %d: %w", i, err)
		}
		counts.Reviews++
	}

	return counts, nil
}
