package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
)

// BooksController exposes catalog CRUD.
type BooksController struct {
	books *books.Repository
}

// NewBooksController creates a new books controller.
func NewBooksController(booksRepo *books.Repository) *BooksController {
	return &BooksController{books: booksRepo}
}

type createBookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Description string `json:"description"`
	ISBN        string `json:"isbn"`
	Publisher   string `json:"publisher"`
	Language    string `json:"language"`
	PageCount   int    `json:"page_count"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// CreateBook adds a catalog entry.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}
	if req.Quantity < 0 || req.Price < 0 {
		respondBadRequest(c, "quantity and price must not be negative")
		return
	}

	book := &entities.Book{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ISBN:        req.ISBN,
		Publisher:   req.Publisher,
		Language:    req.Language,
		PageCount:   req.PageCount,
		Quantity:    req.Quantity,
		Price:       req.Price,
	}
	if err := bc.books.CreateBook(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	respondCreated(c, book)
}

// GetBook returns one catalog entry.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.GetBookByID(id)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// ListBooks returns catalog entries with pagination. Supports
// ?search=<title or author>.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	limit, offset := parsePagination(c)

	results, total, err := bc.books.ListBooks(c.Query("search"), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	respondPaginated(c, results, total, limit, offset)
}

type updateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	ISBN        *string `json:"isbn"`
	Publisher   *string `json:"publisher"`
	Language    *string `json:"language"`
	PageCount   *int    `json:"page_count"`
	Price       *int64  `json:"price"`
}

// UpdateBook changes catalog fields on an entry. Inventory counters are not
// editable through this endpoint.
// PATCH /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Price != nil && *req.Price < 0 {
		respondBadRequest(c, "price must not be negative")
		return
	}

	book, err := bc.books.UpdateBook(id, books.BookUpdate{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ISBN:        req.ISBN,
		Publisher:   req.Publisher,
		Language:    req.Language,
		PageCount:   req.PageCount,
		Price:       req.Price,
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a catalog entry.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.books.DeleteBook(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted")
}
