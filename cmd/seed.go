package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/smarttech/storefront/model"
)

const boardDescription = `The SmartTech Interactive Smart Board RK3588 is a cutting-edge educational and business solution
that combines advanced technology with intuitive design. Perfect for classrooms, meeting rooms,
and collaborative spaces, this interactive display changes the way we teach, learn, and present.

Key Features:
- High-performance RK3588 processor for smooth operation
- Crystal-clear 4K display with multi-touch capabilities
- Advanced AI-powered features for enhanced interaction
- Comprehensive connectivity options for all your devices
- Durable construction built for intensive daily use`

func boardProduct() model.Product {
	return model.Product{
		Name:        "SmartTech Interactive Smart Board RK3588",
		Description: boardDescription,
		// base price; final pricing is quoted on contact
		Price: decimal.NewFromInt(2500),
		Specifications: map[string]interface{}{
			"processor":        "RK3588",
			"operating_system": "Android 12",
			"ram":              "16GB",
			"storage":          "256GB",
			"camera":           "48MP AI camera with facial recognition",
			"microphones":      "8 microphones array",
			"audio":            "2.1 channel audio system",
			"connectivity":     []string{"NFC", "WiFi 6", "Bluetooth 5.2", "USB 3.0", "USB-C", "HDMI"},
			"security":         []string{"Fingerprint scanner", "Facial recognition"},
			"sizes_available":  []string{"65 inch", "75 inch", "86 inch", "98 inch", "100 inch", "105 inch", "110 inch"},
			"resolution":       "4K UHD",
			"touch_points":     "20-point multi-touch",
			"warranty":         "2 years international warranty",
		},
		StockQuantity: 50,
		IsActive:      true,
	}
}

func generatePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// seedCommands creates the launch product and the first admin. Both steps
// are skipped when their data already exists.
func seedCommands(app *storefrontInstance) *cobra.Command {
	var (
		username string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "create the launch product and the first admin",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			sf := app.storefront

			created, err := sf.SeedCatalog(ctx, boardProduct())
			if err != nil {
				log.Fatalf("Error seeding catalog: %v", err)
			}
			if created {
				fmt.Println("Created SmartTech Interactive Smart Board product")
			}

			if password == "" {
				password = os.Getenv("STOREFRONT_ADMIN_PASSWORD")
			}
			generated := password == ""
			if generated {
				if password, err = generatePassword(); err != nil {
					log.Fatalf("Error generating admin password: %v", err)
				}
			}

			created, err = sf.SeedAdmin(ctx, username, email, password)
			if err != nil {
				log.Fatalf("Error seeding admin: %v", err)
			}
			if created {
				fmt.Printf("Created admin user %q\n", username)
				if generated {
					fmt.Printf("Password: %s\n", password)
					fmt.Println("Change it after the first login.")
				}
			}
		},
	}

	cmd.Flags().StringVar(&username, "admin-username", "admin", "username of the first admin")
	cmd.Flags().StringVar(&email, "admin-email", "admin@smarttech.com", "email of the first admin")
	cmd.Flags().StringVar(&password, "admin-password", "", "password of the first admin (default: STOREFRONT_ADMIN_PASSWORD or generated)")

	return cmd
}
