package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/service/sp500"
)

func main() {
	asJSON := flag.Bool("json", false, "print JSON instead of a TypeScript list")
	url := flag.String("url", sp500.DefaultURL, "constituents page")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cs, err := sp500.NewScraper(*url, nil).Constituents(ctx)
	if err != nil {
		log.Fatalf("sp500: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(cs)
	} else {
		err = writeTypeScript(os.Stdout, cs)
	}
	if err != nil {
		log.Fatalf("write: %v", err)
	}
}

var tsEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func writeTypeScript(w io.Writer, cs []models.Constituent) error {
	var b strings.Builder
	b.WriteString("export const SP500 = [\n")
	for _, c := range cs {
		fmt.Fprintf(&b, "  { symbol: '%s', name: '%s', sector: '%s' },\n",
			tsEscaper.Replace(c.Symbol), tsEscaper.Replace(c.Name), tsEscaper.Replace(c.Sector))
	}
	b.WriteString("];\n")
	fmt.Fprintf(&b, "\n// Total: %d stocks\n", len(cs))
	_, err := io.WriteString(w, b.String())
	return err
}
