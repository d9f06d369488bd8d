package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crm/internal/dto"
	"crm/internal/jobs"
)

type seedCustomer struct {
	Name  string
	Email string
	Phone string
}

type seedProduct struct {
	Name  string
	Price string
	Stock int
}

var (
	demoCustomers = []seedCustomer{
		{Name: "John Doe", Email: "john@example.com", Phone: "+1234567890"},
	}
	demoProducts = []seedProduct{
		{Name: "Phone", Price: "499.99", Stock: 5},
		{Name: "Tablet", Price: "299.99", Stock: 8},
	}
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "seed",
		Short:         "Create demo customers and products through the API",
		Long:          "Creates the demo customer and products. Records that already exist are skipped.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, skipped, err := seed(cmd.Context(), rootOpts.client(), rootOpts.Logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records, skipped %d existing\n", created, skipped)
			return nil
		},
	}
}

func seed(ctx context.Context, client *jobs.Client, logger *zap.Logger) (created, skipped int, err error) {
	for _, c := range demoCustomers {
		phone := c.Phone
		_, err := client.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: c.Name, Email: c.Email, Phone: &phone})
		var he *jobs.HTTPError
		switch {
		case err == nil:
			created++
			logger.Info("customer seeded", zap.String("email", c.Email))
		case errors.As(err, &he) && he.StatusCode == http.StatusConflict:
			skipped++
			logger.Info("customer already exists", zap.String("email", c.Email))
		default:
			return created, skipped, fmt.Errorf("seeding customer %s: %w", c.Email, err)
		}
	}

	for _, p := range demoProducts {
		existing, err := client.ListProducts(ctx, p.Name)
		if err != nil {
			return created, skipped, fmt.Errorf("looking up product %s: %w", p.Name, err)
		}
		if hasProduct(existing, p.Name) {
			skipped++
			logger.Info("product already exists", zap.String("name", p.Name))
			continue
		}

		stock := p.Stock
		if _, err := client.CreateProduct(ctx, dto.CreateProductRequest{
			Name:  p.Name,
			Price: dto.DecimalInput(p.Price),
			Stock: &stock,
		}); err != nil {
			return created, skipped, fmt.Errorf("seeding product %s: %w", p.Name, err)
		}
		created++
		logger.Info("product seeded", zap.String("name", p.Name))
	}

	return created, skipped, nil
}

// hasProduct reports an exact name match; the API filter matches substrings.
func hasProduct(products []dto.ProductResponse, name string) bool {
	for _, p := range products {
		if p.Name == name {
			return true
		}
	}
	return false
}
