package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/dmitrijs2005/fraudwatch/internal/client/authz"
	"github.com/dmitrijs2005/fraudwatch/internal/client/client"
	"golang.org/x/sync/errgroup"
)

// Dashboard shows the model and dataset summaries. Both are fetched at once;
// a failure of one does not hide the other.
func (a *App) Dashboard(ctx context.Context) error {
	if !a.enter(authz.DashboardPage) {
		return nil
	}

	var (
		model      *client.ModelInfo
		dataset    *client.DatasetInfo
		modelErr   error
		datasetErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		model, modelErr = a.api.ModelInfo(ctx)
		return nil
	})
	g.Go(func() error {
		dataset, datasetErr = a.api.DatasetInfo(ctx)
		return nil
	})
	_ = g.Wait()

	if identity := a.session.CurrentIdentity(); identity != nil {
		a.printf("Signed in as %s (%s)\n", identity.Name, identity.Role.String())
	}

	a.println("== Model ==")
	switch {
	case modelErr != nil:
		a.printf("unavailable: %s\n", client.Message(modelErr))
	case !model.ModelExists:
		a.println("No trained model. Train one before running detection.")
	default:
		a.printf("type: %s\nsize: %.2f MB\nlast trained: %s\n", model.ModelType, model.ModelSizeMB, model.LastModified)
	}

	a.println("== Dataset ==")
	if datasetErr != nil {
		a.printf("unavailable: %s\n", client.Message(datasetErr))
	} else {
		a.printDataset(dataset)
	}

	return nil
}

// Analytics shows the dataset statistics and its columns.
func (a *App) Analytics(ctx context.Context) error {
	if !a.enter(authz.AnalyticsPage) {
		return nil
	}
	info, err := a.api.DatasetInfo(ctx)
	if err != nil {
		return err
	}
	a.printDataset(info)
	legit := info.TotalRows - info.FraudCount
	a.printf("legitimate: %d (%.2f%%)\n", legit, 100-info.FraudPercentage)
	if len(info.Columns) > 0 {
		a.println("columns:")
		for _, c := range info.Columns {
			a.printf("  - %s\n", c)
		}
	}
	return nil
}

func (a *App) printDataset(info *client.DatasetInfo) {
	a.printf("rows: %d\nfraud: %d (%.2f%%)\nfile size: %.2f MB\n",
		info.TotalRows, info.FraudCount, info.FraudPercentage, info.FileSizeMB)
}

// Train asks the service to retrain from its CSV dataset. Admin only.
func (a *App) Train(ctx context.Context) error {
	if !a.enter(authz.TrainPage) {
		return nil
	}
	ok, err := GetConfirm(a.reader, "Retrain the model from the service dataset?", a.out)
	if err != nil || !ok {
		return err
	}

	a.println("Training, this may take a while...")
	res, err := a.api.TrainFromCSV(ctx)
	if err != nil {
		return err
	}

	// the detect page must re-check the model
	a.workflow = nil

	a.println(res.Message)
	a.printf("rows: %d, fraud: %d (%.2f%%)\n",
		res.DatasetInfo.TotalRows, res.DatasetInfo.FraudCount, res.DatasetInfo.FraudPercentage)
	if len(res.Metrics) > 0 {
		keys := make([]string, 0, len(res.Metrics))
		for k := range res.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a.printf("  %s: %s\n", k, string(res.Metrics[k]))
		}
	}
	return nil
}

// Users lists every account. Admin only.
func (a *App) Users(ctx context.Context) error {
	if !a.enter(authz.UsersPage) {
		return nil
	}
	users, err := a.api.Users(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role.String())
	}
	return tw.Flush()
}
