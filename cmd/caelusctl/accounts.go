package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/domain/models"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			users, err := svcs.Accounts.Users(ctx)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(users)
			}
			tw := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tCREATED")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Email, u.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	get := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			u, err := svcs.Accounts.User(ctx, userID)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(u)
			}
			fmt.Fprintf(opts.out, "user %d: %s, created %s\n", u.ID, u.Email, u.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			u, err := svcs.Accounts.CreateUser(ctx, args[0])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(u)
			}
			fmt.Fprintf(opts.out, "created user %d (%s)\n", u.ID, u.Email)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete a user and their deployments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svcs.Accounts.DeleteUser(ctx, userID); err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "deleted user %d\n", userID)
			return nil
		},
	}

	cmd.AddCommand(list, get, create, del)
	return cmd
}

func newDeploymentsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deployments",
		Aliases: []string{"deploy"},
		Short:   "Manage the deployments of a user",
	}

	list := &cobra.Command{
		Use:   "list USER_ID",
		Short: "List a user's deployments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			deployments, err := svcs.Accounts.Deployments(ctx, userID)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(deployments)
			}
			return printDeployments(opts, deployments)
		},
	}

	get := &cobra.Command{
		Use:   "get USER_ID DEPLOYMENT_ID",
		Short: "Show a deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "USER_ID", "DEPLOYMENT_ID")
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			d, err := svcs.Accounts.Deployment(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(d)
			}
			return printDeployments(opts, []models.Deployment{*d})
		},
	}

	var (
		templateID int64
		productID  int64
		domainname string
		values     string
	)
	create := &cobra.Command{
		Use:   "create USER_ID --domain NAME (--template ID | --product ID)",
		Short: "Create a deployment; with only --product the canonical template is used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			in := models.NewDeployment{Domainname: domainname}
			if cmd.Flags().Changed("template") {
				in.TemplateID = &templateID
			}
			if cmd.Flags().Changed("product") {
				in.ProductID = &productID
			}
			if values != "" {
				if !json.Valid([]byte(values)) {
					return fmt.Errorf("%w: --values is not valid JSON", domain.ErrValidationFailed)
				}
				in.UserValues = json.RawMessage(values)
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			d, err := svcs.Accounts.CreateDeployment(ctx, userID, in)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(d)
			}
			fmt.Fprintf(opts.out, "created deployment %d (%s) on template %d, %s\n", d.ID, d.UID, d.TemplateID, d.Status)
			return nil
		},
	}
	create.Flags().Int64Var(&templateID, "template", 0, "template ID")
	create.Flags().Int64Var(&productID, "product", 0, "product ID; its canonical template is used without --template")
	create.Flags().StringVar(&domainname, "domain", "", "domain name the deployment serves")
	create.Flags().StringVar(&values, "values", "", "user values as a JSON object")
	_ = create.MarkFlagRequired("domain")

	upgrade := &cobra.Command{
		Use:   "upgrade USER_ID DEPLOYMENT_ID TEMPLATE_ID",
		Short: "Move a deployment to a newer template of its product",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "USER_ID", "DEPLOYMENT_ID", "TEMPLATE_ID")
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			d, err := svcs.Accounts.UpgradeDeployment(ctx, ids[0], ids[1], ids[2])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(d)
			}
			fmt.Fprintf(opts.out, "deployment %d upgrading to template %d (generation %d)\n", d.ID, d.TemplateID, d.Generation)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete USER_ID DEPLOYMENT_ID",
		Short: "Delete a deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "USER_ID", "DEPLOYMENT_ID")
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svcs.Accounts.DeleteDeployment(ctx, ids[0], ids[1]); err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "deployment %d delete queued\n", ids[1])
			return nil
		},
	}

	cmd.AddCommand(list, get, create, upgrade, del)
	return cmd
}

func newJobsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect reconcile jobs",
	}

	var filter models.JobFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List reconcile jobs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			jobs, err := svcs.Accounts.Jobs(ctx, filter)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(jobs)
			}
			tw := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDEPLOYMENT\tREASON\tGEN\tSTATUS\tERROR")
			for _, j := range jobs {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\n",
					j.ID, j.DeploymentID, j.Reason, j.Generation, j.Status, orDash(j.LastError))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&filter.Status, "status", "", "only jobs in this status (queued, running, done, failed)")
	list.Flags().Int64Var(&filter.DeploymentID, "deployment", 0, "only jobs of this deployment")
	list.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of jobs")

	cmd.AddCommand(list)
	return cmd
}

func printDeployments(opts *rootOptions, deployments []models.Deployment) error {
	tw := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUID\tDOMAIN\tTEMPLATE\tAPPLIED\tSTATUS\tERROR")
	for _, d := range deployments {
		applied := "-"
		if d.AppliedTemplateID != nil {
			applied = fmt.Sprint(*d.AppliedTemplateID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			d.ID, d.UID, d.Domainname, d.TemplateID, applied, d.Status, orDash(d.LastError))
	}
	return tw.Flush()
}

func parseIDs(args []string, names ...string) ([]int64, error) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := parseID(name, args[i])
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
