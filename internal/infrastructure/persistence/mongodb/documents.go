package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xiebiao/bookreviews/internal/domain/author"
	"github.com/xiebiao/bookreviews/internal/domain/book"
	"github.com/xiebiao/bookreviews/internal/domain/review"
	"github.com/xiebiao/bookreviews/internal/domain/user"
)

// Stored shapes of the entities. Field names are the filter keys of the
// query schemas, so filters map onto documents without translation.

type authorDocument struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
	Bio  string             `bson:"bio"`
}

func toAuthorDocument(a *author.Author) *authorDocument {
	return &authorDocument{ID: a.ID, Name: a.Name, Bio: a.Bio}
}

func toAuthorEntity(d *authorDocument) *author.Author {
	return &author.Author{ID: d.ID, Name: d.Name, Bio: d.Bio}
}

type bookDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	ISBN            string             `bson:"isbn"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	PublicationDate time.Time          `bson:"publication_date"`
	AuthorID        primitive.ObjectID `bson:"author_id"`
}

func toBookDocument(b *book.Book) *bookDocument {
	return &bookDocument{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Description:     b.Description,
		PublicationDate: b.PublicationDate,
		AuthorID:        b.AuthorID,
	}
}

func toBookEntity(d *bookDocument) *book.Book {
	return &book.Book{
		ID:              d.ID,
		ISBN:            d.ISBN,
		Title:           d.Title,
		Description:     d.Description,
		PublicationDate: d.PublicationDate.UTC(),
		AuthorID:        d.AuthorID,
	}
}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Name     string             `bson:"name"`
	Birthday time.Time          `bson:"birthday"`
	Email    string             `bson:"email"`
	Phone    string             `bson:"phone"`
}

func toUserDocument(u *user.User) *userDocument {
	return &userDocument{ID: u.ID, Name: u.Name, Birthday: u.Birthday, Email: u.Email, Phone: u.Phone}
}

func toUserEntity(d *userDocument) *user.User {
	return &user.User{ID: d.ID, Name: d.Name, Birthday: d.Birthday.UTC(), Email: d.Email, Phone: d.Phone}
}

type reviewDocument struct {
	ID      primitive.ObjectID `bson:"_id"`
	Rating  int                `bson:"rating"`
	Comment string             `bson:"comment"`
	BookID  primitive.ObjectID `bson:"book_id"`
	UserID  primitive.ObjectID `bson:"user_id"`
}

func toReviewDocument(r *review.Review) *reviewDocument {
	return &reviewDocument{ID: r.ID, Rating: r.Rating, Comment: r.Comment, BookID: r.BookID, UserID: r.UserID}
}

func toReviewEntity(d *reviewDocument) *review.Review {
	return &review.Review{ID: d.ID, Rating: d.Rating, Comment: d.Comment, BookID: d.BookID, UserID: d.UserID}
}

func mapDocs[D any, E any](docs []*D, convert func(*D) *E) []*E {
	out := make([]*E, len(docs))
	for i, d := range docs {
		out[i] = convert(d)
	}
	return out
}
