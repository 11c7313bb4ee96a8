package api

import (
	"log/slog"

	"github.com/gorilla/mux"

	"github.com/prepdeck/prepdeck/internal/config"
	"github.com/prepdeck/prepdeck/internal/genai"
	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/internal/session"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

// Deps carries everything the HTTP surface needs. main wires it once.
type Deps struct {
	Config    *config.Config
	Users     repository.UserRepo
	Jobs      repository.JobRepo
	Sessions  *session.Manager
	Questions *question.Manager
	Generator *genai.Generator
	Logger    *slog.Logger
	Version   string
	BuildTime string
}

func SetupRoutes(d Deps) *mux.Router {
	if d.Logger != nil {
		SetLogger(d.Logger)
	}

	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(d.Users, d.Config.JWTSecret, d.Config.TokenDuration)
	sessionHandler := NewSessionHandler(d.Sessions)
	questionHandler := NewQuestionHandler(d.Questions)
	aiHandler := NewAIHandler(d.Generator, d.Questions)
	jobHandler := NewJobHandler(d.Jobs, d.Sessions)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(d.Version, d.BuildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	auth := JWTAuthMiddleware(d.Config.JWTSecret, d.Users)

	authR := r.PathPrefix("/auth").Subrouter()
	authR.Use(auth)
	authR.HandleFunc("/profile", authHandler.Profile).Methods("GET")

	sessionR := r.PathPrefix("/session").Subrouter()
	sessionR.Use(auth)
	sessionR.HandleFunc("/create", sessionHandler.Create).Methods("POST")
	sessionR.HandleFunc("/my-session", sessionHandler.MySessions).Methods("GET")
	sessionR.HandleFunc("/{id}/generate-answers", jobHandler.GenerateSessionAnswers).Methods("POST")
	sessionR.HandleFunc("/{id}", sessionHandler.GetByID).Methods("GET")
	sessionR.HandleFunc("/{id}", sessionHandler.Update).Methods("PUT")
	sessionR.HandleFunc("/{id}", sessionHandler.Delete).Methods("DELETE")

	questionR := r.PathPrefix("/question").Subrouter()
	questionR.Use(auth)
	questionR.HandleFunc("/add", questionHandler.Add).Methods("POST")
	questionR.HandleFunc("/session/{sessionId}/questions", questionHandler.ListForSession).Methods("GET")
	questionR.HandleFunc("/{id}/pin", questionHandler.Pin).Methods("POST")
	questionR.HandleFunc("/{id}/note", questionHandler.Note).Methods("POST")
	questionR.HandleFunc("/{questionId}/generate-answer", questionHandler.GenerateAnswer).Methods("POST")
	questionR.HandleFunc("/{questionId}/answer", questionHandler.SetAnswer).Methods("PUT")
	questionR.HandleFunc("/{questionId}", questionHandler.Get).Methods("GET")

	aiR := r.PathPrefix("/ai").Subrouter()
	aiR.Use(auth)
	aiR.HandleFunc("/generate-questions", aiHandler.GenerateQuestions).Methods("POST")
	aiR.HandleFunc("/generate-explanation", aiHandler.GenerateExplanation).Methods("POST")

	jobsR := r.PathPrefix("/jobs").Subrouter()
	jobsR.Use(auth)
	jobsR.HandleFunc("/{id}", jobHandler.Get).Methods("GET")

	return r
}
