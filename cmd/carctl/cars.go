package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pribylovaa/car-market/internal/api"
	"github.com/pribylovaa/car-market/internal/models"
)

// bindListFlags - общие флаги списочных эндпойнтов.
func bindListFlags(f *pflag.FlagSet, o *api.ListOptions) {
	f.IntVar(&o.Page, "page", 0, "page number (1-based)")
	f.IntVar(&o.Limit, "limit", 0, "page size")
	f.StringVar(&o.Search, "search", "", "free-text search")
	f.StringVar(&o.SortBy, "sort", "", "sort field")
}

func bindCarFilterFlags(f *pflag.FlagSet, o *api.ListOptions) {
	f.StringVar(&o.Brand, "brand", "", "brand filter (all - no filter)")
	f.StringVar(&o.Model, "model", "", "model filter (all - no filter)")
	f.IntVar(&o.Year, "year", 0, "year")
	f.StringVar(&o.Fuel, "fuel", "", "fuel type")
	f.StringVar(&o.Transmission, "transmission", "", "transmission")
	f.StringVar(&o.Condition, "condition", "", "condition")
	f.StringVar(&o.Color, "color", "", "color")
	f.StringVar(&o.City, "city", "", "city")
	f.Float64Var(&o.MinPrice, "min-price", 0, "min price")
	f.Float64Var(&o.MaxPrice, "max-price", 0, "max price")
}

func (c *cli) carsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cars",
		Short: "Объявления",
	}

	cmd.AddCommand(
		c.carsListCmd("list", "Каталог объявлений", false),
		c.carsListCmd("premium", "Премиум-объявления", true),
		c.carsGetCmd(),
		c.carsCreateCmd(),
		c.carsUploadCmd(),
	)

	return cmd
}

func (c *cli) carsListCmd(use, short string, premium bool) *cobra.Command {
	var opts api.ListOptions

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := c.app.client.ListCars
			if premium {
				list = c.app.client.ListPremiumCars
			}

			page, err := list(cmd.Context(), opts)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	bindListFlags(cmd.Flags(), &opts)
	bindCarFilterFlags(cmd.Flags(), &opts)

	return cmd
}

func (c *cli) carsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Объявление по id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			car, err := c.app.client.GetCar(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), car)
		},
	}
}

func (c *cli) carsCreateCmd() *cobra.Command {
	var in models.CarInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Разместить объявление",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			car, err := c.app.client.CreateUserCar(cmd.Context(), in)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), car)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Brand, "brand", "", "brand")
	f.StringVar(&in.Model, "model", "", "model")
	f.IntVar(&in.Year, "year", 0, "year")
	f.Float64Var(&in.Price, "price", 0, "price")
	f.IntVar(&in.Mileage, "mileage", 0, "mileage, km")
	f.StringVar(&in.Fuel, "fuel", "", "fuel type")
	f.StringVar(&in.Transmission, "transmission", "", "transmission")
	f.StringVar(&in.Condition, "condition", "", "condition")
	f.StringVar(&in.Color, "color", "", "color")
	f.StringVar(&in.City, "city", "", "city")
	f.StringVar(&in.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("brand")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func (c *cli) carsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Загрузить фотографии объявления",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]models.File, 0, len(args))
			for _, p := range args {
				f, err := os.Open(p)
				if err != nil {
					return err
				}
				defer f.Close()

				files = append(files, models.File{Name: filepath.Base(p), Content: f})
			}

			res, err := c.app.client.UploadCarImages(cmd.Context(), files)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
