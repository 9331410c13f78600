package model

import "time"

// Author writes zero or more books.
type Author struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Books     []Book    `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Author) TableName() string {
	return "authors"
}

// Book is the catalog record. OwnerID is the user who created the book and
// is nil for books loaded from a catalog document.
type Book struct {
	ID              uint      `gorm:"column:id;primaryKey"`
	Title           string    `gorm:"column:title"`
	PublicationYear int       `gorm:"column:publication_year"`
	AuthorID        uint      `gorm:"column:author_id"`
	Author          Author    `gorm:"foreignKey:AuthorID"`
	OwnerID         *uint     `gorm:"column:owner_id"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Book) TableName() string {
	return "books"
}

// OwnedBy reports whether userID created the book.
func (b *Book) OwnedBy(userID uint) bool {
	return b.OwnerID != nil && *b.OwnerID == userID
}

// Library holds a shared set of books. A book may sit in many libraries.
type Library struct {
	ID        uint       `gorm:"column:id;primaryKey"`
	Name      string     `gorm:"column:name"`
	Books     []Book     `gorm:"many2many:library_books;joinForeignKey:LibraryID;joinReferences:BookID"`
	Librarian *Librarian `gorm:"foreignKey:LibraryID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Library) TableName() string {
	return "libraries"
}

// Librarian runs exactly one library.
type Librarian struct {
	ID        uint   `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name"`
	LibraryID uint   `gorm:"column:library_id;uniqueIndex"`
}

func (Librarian) TableName() string {
	return "librarians"
}

// LibraryBook is the join row between a library and one of its books.
type LibraryBook struct {
	LibraryID uint `gorm:"column:library_id;primaryKey"`
	BookID    uint `gorm:"column:book_id;primaryKey"`
}

func (LibraryBook) TableName() string {
	return "library_books"
}
