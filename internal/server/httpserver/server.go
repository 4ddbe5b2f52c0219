// Package httpserver exposes the finance record HTTP JSON API.
package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dkrasnov/finledger/internal/errs"
	"github.com/dkrasnov/finledger/internal/service"
	"github.com/dkrasnov/finledger/internal/token"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth   service.AuthService
	txs    service.TransactionService
	tokens *token.Manager
	log    *zap.Logger
}

// New constructs a Server with injected services.
func New(auth service.AuthService, txs service.TransactionService, tokens *token.Manager, log *zap.Logger) *Server {
	return &Server{auth: auth, txs: txs, tokens: tokens, log: log}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(s.log), RequestLogger(s.log), corsMiddleware())

	r.POST("/register", s.register)
	r.POST("/signin", s.signin)

	authed := r.Group("/", s.RequireAuth())
	authed.POST("/transactions", s.createTransaction)
	authed.GET("/transactions", s.listTransactions)
	authed.DELETE("/transactions/:id", s.deleteTransaction)

	return r
}

// --- Auth ---

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	u, err := s.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
			return
		}
		if _, ok := errs.AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}
		s.internalError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      u.ID,
		"message": "User registered successfully",
		"user":    userJSON{Email: u.Email},
	})
}

func (s *Server) signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	toks, u, err := s.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		case errors.Is(err, errs.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, try again later"})
		default:
			if _, ok := errs.AsValidation(err); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
				return
			}
			s.internalError(c, "signin", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   toks.AccessToken,
		"user":    userJSON{ID: u.ID, Email: u.Email},
	})
}

// --- Transactions ---

func (s *Server) createTransaction(c *gin.Context) {
	ident, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Access Denied: No token provided"})
		return
	}

	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tx, err := s.txs.Create(c.Request.Context(), ident.UserID, service.CreateTransactionInput{
		Amount:      req.Amount,
		Type:        req.Type,
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(ve)})
			return
		}
		s.internalError(c, "create transaction", err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionJSON(*tx))
}

func (s *Server) listTransactions(c *gin.Context) {
	ident, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Access Denied: No token provided"})
		return
	}

	ts, err := s.txs.ListByOwner(c.Request.Context(), ident.UserID)
	if err != nil {
		s.internalError(c, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, toTransactionListJSON(ts))
}

func (s *Server) deleteTransaction(c *gin.Context) {
	ident, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Access Denied: No token provided"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	tx, err := s.txs.Delete(c.Request.Context(), ident.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			// absent and not-owned are deliberately the same answer
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found or not owned by user"})
		default:
			if _, ok := errs.AsValidation(err); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
				return
			}
			s.internalError(c, "delete transaction", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Transaction deleted",
		"deletedTransaction": toTransactionJSON(*tx),
	})
}

// internalError logs full detail server-side and answers with a generic body.
func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.log.Error(op, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// validationMessage renders a ValidationError for the client, naming the field.
func validationMessage(ve *errs.ValidationError) string {
	switch ve.Field {
	case "amount":
		return "Amount must be a positive number"
	case "type":
		return "Type must be 'income' or 'expense'"
	case "date":
		return "Date must be in YYYY-MM-DD format"
	case "category":
		return "Category is required"
	default:
		return "Invalid " + ve.Field
	}
}
