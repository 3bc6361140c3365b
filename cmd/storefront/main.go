package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"marketplace/internal/storefront"
)

func main() {
	api := flag.String("api", "http://localhost:8000/api/v2", "marketplace API base URL")
	email := flag.String("email", "", "buyer email to sign in with")
	password := flag.String("password", "", "buyer password")
	sellerToken := flag.String("seller-token", "", "seller session token")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := storefront.NewClient(*api, nil)
	if *email != "" {
		if _, err := client.Login(ctx, *email, *password); err != nil {
			log.Fatalf("login: %v", err)
		}
	}
	if *sellerToken != "" {
		client.SetSellerToken(*sellerToken)
	}

	state := storefront.NewState(client)
	if err := state.Load(ctx); err != nil {
		log.Fatal(err)
	}

	if u, ok := state.User(); ok {
		log.Printf("signed in as %s <%s>", u.Name, u.Email)
	}
	if s, ok := state.Seller(); ok {
		log.Printf("seller session for shop %s", s.Name)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK\tSHOP")
	for _, p := range state.Products() {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\n", p.ID, p.Name, p.DiscountPrice, p.Stock, p.Shop.Name)
	}
	_ = tw.Flush()
}
