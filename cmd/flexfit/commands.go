package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/config"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking/remote"
)

type cli struct {
	cfg        *config.Config
	identities *identityFile
	out        io.Writer
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.logout(ctx)
	case "exercises":
		return c.exercises(ctx, args)
	case "log":
		return c.logSession(ctx, args)
	case "history":
		return c.history(ctx, args)
	case "add-set":
		return c.addSet(ctx, args)
	case "delete":
		return c.deleteRecord(ctx, args)
	default:
		return fmt.Errorf("unknown command [%s]", command)
	}
}

func (c *cli) httpClient() *remote.Client {
	identity, err := c.identities.Load()
	if err != nil && !errors.Is(err, tracking.ErrNotAuthenticated) {
		log.Warnf("ignoring stored identity: %s", err)
	}
	return remote.NewClient(c.cfg.ServerURL, identity, remote.NewHTTPClient(c.cfg.RequestTimeout.Duration))
}

// signedInClient fails fast when nobody is signed in.
func (c *cli) signedInClient() (*remote.Client, error) {
	client := c.httpClient()
	if !client.Identity().SignedIn() {
		return nil, tracking.ErrNotAuthenticated
	}
	return client, nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	password := os.Getenv("FLEXFIT_PASSWORD")
	if *username == "" || password == "" {
		return errors.New("username (-u) and FLEXFIT_PASSWORD are required")
	}

	identity, err := remote.Login(
		ctx,
		c.cfg.ServerURL,
		remote.NewHTTPClient(c.cfg.RequestTimeout.Duration),
		auth.Credentials{Username: *username, Password: password},
	)
	if err != nil {
		return err
	}
	if err := c.identities.Save(identity); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s\n", identity.Username)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	client, err := c.signedInClient()
	if err != nil {
		return err
	}
	if err := client.SignOut(ctx); err != nil {
		// the local session goes away either way
		log.Warnf("sign out on the store: %s", err)
	}
	if err := c.identities.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "signed out")
	return nil
}

func (c *cli) exercises(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("exercises", flag.ContinueOnError)
	group := fs.String("group", "", "muscle group filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exercises, err := c.httpClient().Catalog().List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMUSCLE GROUP")
	for _, e := range exercises {
		if *group != "" && !strings.EqualFold(e.MuscleGroup, *group) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.MuscleGroup)
	}
	return w.Flush()
}

func (c *cli) logSession(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	exerciseID := fs.String("exercise", "", "exercise id from the catalog")
	date := fs.String("date", "", "session date YYYY-MM-DD, defaults to today")
	retries := fs.Int("retries", 1, "how often a failed save is retried")
	var sets setsFlag
	fs.Var(&sets, "set", "a set as REPSxWEIGHT, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := c.signedInClient()
	if err != nil {
		return err
	}

	exercise, err := client.Catalog().Get(ctx, *exerciseID)
	if err != nil {
		return fmt.Errorf("exercise [%s]: %w", *exerciseID, err)
	}

	recorder := tracking.NewRecorder(client, client.Identity().OwnerID)
	if err := recorder.Start(exercise.Ref()); err != nil {
		return err
	}
	for _, set := range sets {
		if err := recorder.AddSet(set.reps, set.weight); err != nil {
			return err
		}
	}
	if *date != "" {
		sessionDate, err := tracking.ParseDate(*date, time.Local)
		if err != nil {
			return err
		}
		if err := recorder.SetDate(sessionDate); err != nil {
			return err
		}
	}

	record, err := recorder.Finish(ctx)
	for attempt := 0; err != nil && attempt < *retries && recorder.Status() == tracking.StatusFailed; attempt++ {
		log.Warnf("save failed, retrying: %s", err)
		record, err = recorder.Retry(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "saved %s: %d sets on %s (record %s)\n",
		record.ExerciseName, recorder.Snapshot().Sets.Len(), record.PerformedAt.Format(tracking.DateLayout), record.ID)
	return nil
}

func (c *cli) history(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	exerciseID := fs.String("exercise", "", "show one exercise day by day")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := c.signedInClient()
	if err != nil {
		return err
	}
	records, err := client.ListByOwner(ctx, client.Identity().OwnerID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	if *exerciseID == "" {
		fmt.Fprintln(w, "EXERCISE\tSESSIONS\tSETS\tVOLUME\tBEST\tLAST")
		for _, s := range tracking.Summarize(records) {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%g\t%s\n",
				s.ExerciseName, s.Records, s.Sets, s.TotalVolume, s.BestWeight, s.LastPerformed.Format(tracking.DateLayout))
		}
		return w.Flush()
	}

	group := tracking.GroupByExercise(records)[*exerciseID]
	fmt.Fprintln(w, "DATE\tRECORD\tSETS")
	for _, rec := range group {
		fmt.Fprintf(w, "%s\t%s\t%s\n", rec.PerformedAt.Format(tracking.DateLayout), rec.ID, formatSeries(rec.Series()))
	}
	fmt.Fprintln(w)

	stats := tracking.DailyStats(group)
	days := make([]time.Time, 0, len(stats))
	for day := range stats {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	fmt.Fprintln(w, "DAY\tSETS\tAVG REPS\tAVG WEIGHT")
	for _, day := range days {
		s := stats[day]
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\n", day.Format(tracking.DateLayout), s.Sets, s.AvgReps, s.AvgWeight)
	}
	return w.Flush()
}

func (c *cli) addSet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-set", flag.ContinueOnError)
	recordID := fs.String("record", "", "record id")
	date := fs.String("date", "", "move the record to this date YYYY-MM-DD")
	var sets setsFlag
	fs.Var(&sets, "set", "a set as REPSxWEIGHT, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := c.signedInClient()
	if err != nil {
		return err
	}
	record, err := findRecord(ctx, client, client.Identity().OwnerID, *recordID)
	if err != nil {
		return err
	}

	editor, err := tracking.OpenEditor(client, client.Identity().OwnerID, record)
	if err != nil {
		return err
	}
	if editor.Degraded() {
		fmt.Fprintln(c.out, "stored sets were unreadable, the record will hold only the sets given now")
	}
	for _, set := range sets {
		if err := editor.AddSet(set.reps, set.weight); err != nil {
			return err
		}
	}
	if *date != "" {
		newDate, err := tracking.ParseDate(*date, time.Local)
		if err != nil {
			return err
		}
		if err := editor.SetDate(newDate); err != nil {
			return err
		}
	}

	updated, err := editor.Commit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "updated %s: %s\n", updated.ID, formatSeries(editor.Sets()))
	return nil
}

func (c *cli) deleteRecord(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	recordID := fs.String("record", "", "record id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *recordID == "" {
		return errors.New("-record is required")
	}

	client, err := c.signedInClient()
	if err != nil {
		return err
	}
	if err := client.Delete(ctx, *recordID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "deleted %s\n", *recordID)
	return nil
}

func findRecord(ctx context.Context, repo tracking.Repository, ownerID, recordID string) (tracking.Record, error) {
	records, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return tracking.Record{}, err
	}
	for _, rec := range records {
		if rec.ID == recordID {
			return rec, nil
		}
	}
	return tracking.Record{}, fmt.Errorf("record [%s]: %w", recordID, tracking.ErrRecordNotFound)
}

func formatSeries(series tracking.SetSeries) string {
	parts := make([]string, 0, series.Len())
	for _, set := range series {
		parts = append(parts, fmt.Sprintf("%dx%g", set.Reps, set.Weight))
	}
	return strings.Join(parts, " ")
}
