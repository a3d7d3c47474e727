package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/fraudwatch/internal/client/authz"
	"github.com/dmitrijs2005/fraudwatch/internal/client/batch"
	"github.com/dmitrijs2005/fraudwatch/internal/client/models"
	"github.com/dmitrijs2005/fraudwatch/internal/client/prediction"
)

var errUsage = errors.New("usage")

// detectReady enters the detect page and makes sure a workflow is open. A
// missing model is shown as the train-first notice.
func (a *App) detectReady(ctx context.Context) bool {
	if !a.enter(authz.DetectPage) {
		return false
	}
	if a.workflow != nil {
		return true
	}

	w, err := prediction.Open(ctx, a.api, a.editor, a.scoringDefaults(), a.log)
	if errors.Is(err, prediction.ErrModelNotTrained) {
		a.println("Model Not Trained")
		a.println("Please train the model first before making predictions.")
		if identity := a.session.CurrentIdentity(); identity != nil && identity.Role == models.RoleAdmin {
			a.println("Type 'train' to train it now.")
		}
		return false
	}
	if err != nil {
		a.printf("Error: %s\n", errorMessage(err))
		return false
	}
	a.workflow = w
	return true
}

// Detect opens the detection page and shows the current batch.
func (a *App) Detect(ctx context.Context) error {
	if !a.detectReady(ctx) {
		return nil
	}
	a.println("Fraud detection. Commands: add, set <#> <field#> <value>, rm <#>, clear, list, submit, results")
	return a.List(ctx)
}

// Add appends a record and prompts for each field. Empty answers leave the
// field blank.
func (a *App) Add(ctx context.Context) error {
	if !a.detectReady(ctx) {
		return nil
	}
	i := a.editor.Add()
	for _, f := range batch.Fields {
		v, err := getSimpleText(a.reader, string(f), a.out)
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		if err := a.editor.Update(i, f, v); err != nil {
			return err
		}
	}
	r, err := a.editor.Record(i)
	if err != nil {
		return err
	}
	a.printf("Added transaction #%d (%s)\n", i+1, completeness(r))
	return nil
}

// Set updates one field: set <#> <field#|field name> <value...>.
func (a *App) Set(ctx context.Context, args []string) error {
	if !a.detectReady(ctx) {
		return nil
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: set <#> <field#> <value>", errUsage)
	}
	i, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	f, err := batch.ParseField(args[1])
	if err != nil {
		return err
	}
	value := strings.Join(args[2:], " ")
	if err := a.editor.Update(i, f, value); err != nil {
		return err
	}
	a.printf("#%d %s = %q\n", i+1, f, value)
	return nil
}

// Remove deletes a record: rm <#>. Later records move up.
func (a *App) Remove(ctx context.Context, args []string) error {
	if !a.detectReady(ctx) {
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: rm <#>", errUsage)
	}
	i, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	if err := a.editor.Remove(i); err != nil {
		return err
	}
	a.printf("Removed #%d, %d left\n", i+1, a.editor.Len())
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	if !a.detectReady(ctx) {
		return nil
	}
	a.editor.Clear()
	a.println("Batch cleared.")
	return nil
}

// List prints the batch with any verdicts that are still current.
func (a *App) List(ctx context.Context) error {
	if !a.detectReady(ctx) {
		return nil
	}
	if a.editor.Len() == 0 {
		a.println("No transactions. Type 'add' to create one.")
		return nil
	}
	return a.printBatch(a.workflow.Results())
}

// Submit sends the complete records for scoring.
func (a *App) Submit(ctx context.Context) error {
	if !a.detectReady(ctx) {
		return nil
	}
	out, err := a.workflow.Submit(ctx)
	if err != nil {
		return err
	}
	a.printf("Scored %d transaction(s): %d flagged as fraud\n", len(out.Verdicts), out.FraudCount)
	if len(out.Skipped) > 0 {
		a.printf("Skipped %d incomplete transaction(s): %s\n", len(out.Skipped), positions(out.Skipped))
	}
	return a.printBatch(out)
}

// Results reprints the last verdicts, if the batch has not changed since.
func (a *App) Results(ctx context.Context) error {
	if !a.detectReady(ctx) {
		return nil
	}
	out := a.workflow.Results()
	if out == nil {
		a.println("No current results. Type 'submit' to score the batch.")
		return nil
	}
	return a.printBatch(out)
}

func (a *App) printBatch(out *prediction.Outcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tAMOUNT\tCARD TYPE\tSOURCE\tSTATUS\tVERDICT")
	for i, r := range a.editor.Records() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, r[batch.FieldID], r[batch.FieldAmount], r[batch.FieldCardType], r[batch.FieldSource],
			completeness(r), verdictLabel(out, i))
	}
	return tw.Flush()
}

func verdictLabel(out *prediction.Outcome, i int) string {
	if out == nil {
		return "-"
	}
	fraud, ok := out.Lookup(i)
	switch {
	case !ok:
		return "not scored"
	case fraud:
		return "FRAUD"
	default:
		return "legitimate"
	}
}

func completeness(r batch.Record) string {
	missing := r.Missing()
	if len(missing) == 0 {
		return "complete"
	}
	return fmt.Sprintf("%d/%d missing", len(missing), len(batch.Fields))
}

// parsePosition turns a 1-based position typed by the user into an index.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid transaction number %q", s)
	}
	return n - 1, nil
}

func positions(indices []int) string {
	parts := make([]string, len(indices))
	for k, i := range indices {
		parts[k] = "#" + strconv.Itoa(i+1)
	}
	return strings.Join(parts, ", ")
}
