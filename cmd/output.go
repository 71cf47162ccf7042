package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/s0up4200/restkit/dummyjson"
)

const ruleWidth = 85

// printJSON writes v to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func printUsers(users []dummyjson.User, page *dummyjson.Pagination) error {
	if asJSON {
		return printJSON(users)
	}
	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	fmt.Printf("Found %d %s", len(users), plural(len(users), "user"))
	if page != nil {
		fmt.Printf(" (%d-%d of %d)", page.Skip+1, page.Skip+len(users), page.Total)
	}
	fmt.Println(":")
	fmt.Println(strings.Repeat("━", ruleWidth))
	fmt.Printf("%-6s %-30s %-35s %s\n", "ID", "NAME", "EMAIL", "ROLE")
	fmt.Println(strings.Repeat("━", ruleWidth))
	for _, u := range users {
		fmt.Printf("%-6d %-30s %-35s %s\n", u.ID, truncate(u.FullName(), 28), truncate(u.Email, 33), u.Role)
	}
	fmt.Println(strings.Repeat("━", ruleWidth))
	return nil
}

func printProducts(products []dummyjson.Product, page *dummyjson.Pagination) error {
	if asJSON {
		return printJSON(products)
	}
	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	fmt.Printf("Found %d %s", len(products), plural(len(products), "product"))
	if page != nil {
		fmt.Printf(" (%d-%d of %d)", page.Skip+1, page.Skip+len(products), page.Total)
	}
	fmt.Println(":")
	fmt.Println(strings.Repeat("━", ruleWidth))
	fmt.Printf("%-6s %-40s %-20s %10s %s\n", "ID", "TITLE", "CATEGORY", "PRICE", "STOCK")
	fmt.Println(strings.Repeat("━", ruleWidth))
	for _, p := range products {
		stock := "-"
		if p.Stock != nil {
			stock = strconv.Itoa(*p.Stock)
		}
		fmt.Printf("%-6d %-40s %-20s %10.2f %s\n", p.ID, truncate(p.Title, 38), truncate(p.Category, 18), p.Price, stock)
	}
	fmt.Println(strings.Repeat("━", ruleWidth))
	return nil
}

// parseIDs reads positive integer IDs from args
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		for part := range strings.SplitSeq(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id < 1 {
				return nil, fmt.Errorf("invalid id '%s': must be a positive integer", part)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids given")
	}
	return ids, nil
}
