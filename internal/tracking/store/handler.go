package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/metrics"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/tracing"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
	"github.com/manea-palluat/flexfit-workout-sub001/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=store_test

type recordsRepo interface {
	Create(ctx context.Context, record tracking.Record) error
	Update(ctx context.Context, record tracking.Record) error
	Delete(ctx context.Context, ownerID, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]tracking.Record, error)
}

type Handler struct {
	repo           recordsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo recordsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/records", handler.HandleList).Methods("GET", "OPTIONS").Name("list-records")
	router.HandleFunc("/records", handler.HandleCreate).Methods("POST", "OPTIONS").Name("create-record")
	router.HandleFunc("/records/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-record")
	router.HandleFunc("/records/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-record")
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.create")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ownerID := auth.OwnerFromContext(ctx)
	record, ok := decodeRecord(w, r, ownerID)
	if !ok {
		return
	}
	if record.ExerciseID == "" || record.ExerciseName == "" {
		http.Error(w, "error, exercise missing", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("record.id", record.ID))

	err := handler.repo.Create(ctx, record)
	handler.metricsManager.RecordWrite("create", err)
	if err != nil {
		if errors.Is(err, tracking.ErrRecordExists) {
			http.Error(w, "error, record already exists", http.StatusConflict)
			return
		}
		log.Errorf("create record [%s] for [%s]: %s", record.ID, ownerID, err)
		http.Error(w, "error, failed to create record", http.StatusInternalServerError)
		return
	}

	log.Debugf("record [%s] created for [%s]", record.ID, ownerID)
	writeRecord(w, record, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.update")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ownerID := auth.OwnerFromContext(ctx)
	id := mux.Vars(r)["id"]
	record, ok := decodeRecord(w, r, ownerID)
	if !ok {
		return
	}
	if record.ID != id {
		http.Error(w, "error, record id mismatch", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("record.id", id))

	err := handler.repo.Update(ctx, record)
	handler.metricsManager.RecordWrite("update", err)
	if err != nil {
		if errors.Is(err, tracking.ErrRecordNotFound) {
			http.Error(w, "error, record not found", http.StatusNotFound)
			return
		}
		log.Errorf("update record [%s] for [%s]: %s", id, ownerID, err)
		http.Error(w, "error, failed to update record", http.StatusInternalServerError)
		return
	}

	writeRecord(w, record, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.delete")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "DELETE, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ownerID := auth.OwnerFromContext(ctx)
	if ownerID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("record.id", id))

	err := handler.repo.Delete(ctx, ownerID, id)
	handler.metricsManager.RecordWrite("delete", err)
	if err != nil {
		log.Errorf("delete record [%s] for [%s]: %s", id, ownerID, err)
		http.Error(w, "error, record not deleted, internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted:"+id)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.list")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ownerID := auth.OwnerFromContext(ctx)
	if ownerID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	records, err := handler.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Errorf("list records for [%s]: %s", ownerID, err)
		http.Error(w, "failed to get records", http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		records = []tracking.Record{}
	}

	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("marshal records for [%s]: %s", ownerID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, recordsJson)
}

// decodeRecord reads the request body and checks what the store relies on.
// The owner always comes from the session, never from the body.
func decodeRecord(w http.ResponseWriter, r *http.Request, ownerID string) (tracking.Record, bool) {
	if ownerID == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return tracking.Record{}, false
	}

	var record tracking.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Tracef("decode record: %s", err)
		http.Error(w, "error, invalid record json", http.StatusBadRequest)
		return tracking.Record{}, false
	}

	if record.OwnerID != "" && record.OwnerID != ownerID {
		log.Warnf("owner [%s] tried to write a record of [%s]", ownerID, record.OwnerID)
		http.Error(w, "error, foreign record", http.StatusForbidden)
		return tracking.Record{}, false
	}
	record.OwnerID = ownerID

	if _, err := uuid.Parse(record.ID); err != nil {
		http.Error(w, "error, invalid record id", http.StatusBadRequest)
		return tracking.Record{}, false
	}
	if record.PerformedAt.IsZero() || record.PerformedAt.After(time.Now().AddDate(1, 0, 0)) {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return tracking.Record{}, false
	}
	series, err := tracking.Decode(record.Sets)
	if err != nil {
		http.Error(w, "error, invalid sets", http.StatusBadRequest)
		return tracking.Record{}, false
	}
	if series.IsEmpty() {
		http.Error(w, "error, no sets", http.StatusBadRequest)
		return tracking.Record{}, false
	}

	return record, true
}

func writeRecord(w http.ResponseWriter, record tracking.Record, status int) {
	recordJson, err := json.Marshal(record)
	if err != nil {
		log.Errorf("marshal record [%s]: %s", record.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recordJson, status)
}
