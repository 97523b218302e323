package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/tracing"
	"github.com/manea-palluat/flexfit-workout-sub001/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=catalog_test

type exercisesSource interface {
	List(ctx context.Context) ([]Exercise, error)
	Get(ctx context.Context, id string) (Exercise, error)
}

type Handler struct {
	source exercisesSource
}

func NewHandler(source exercisesSource) *Handler {
	return &Handler{
		source: source,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/exercises", handler.HandleList).Methods("GET").Name("list-exercises")
	router.HandleFunc("/exercises/{id}", handler.HandleGet).Methods("GET").Name("get-exercise")
}

// HandleList returns the catalog, optionally narrowed with ?muscle_group=.
func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	exercises, err := handler.source.List(ctx)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	muscleGroup := strings.TrimSpace(r.URL.Query().Get("muscle_group"))
	filtered := make([]Exercise, 0, len(exercises))
	for _, e := range exercises {
		if muscleGroup != "" && !strings.EqualFold(e.MuscleGroup, muscleGroup) {
			continue
		}
		filtered = append(filtered, e)
	}

	exercisesJson, err := json.Marshal(filtered)
	if err != nil {
		log.Errorf("marshal exercises: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, exercisesJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	exercise, err := handler.source.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exercise [%s]: %s", id, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("marshal exercise [%s]: %s", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, exerciseJson)
}
