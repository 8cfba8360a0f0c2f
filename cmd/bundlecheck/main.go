package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/focusmonitor/engagement-api/services/engagement"
)

// bundlecheck validates a classifier bundle file without starting the
// server. Useful in CI and before promoting a newly trained artifact.
func main() {
	path := flag.String("bundle", "artifacts/model_bundle.json", "path to the model bundle")
	flag.Parse()

	bundle, err := engagement.LoadBundle(*path)
	if err != nil {
		log.Printf("bundle rejected: %v", err)
		os.Exit(1)
	}

	fmt.Printf("bundle OK: %s\n", *path)
	fmt.Printf("  classes:              %v\n", bundle.Classes)
	fmt.Printf("  numeric features:     %v\n", bundle.NumericFeatures)
	if len(bundle.CategoricalFeatures) > 0 {
		fmt.Printf("  categorical features: %v\n", bundle.CategoricalFeatures)
	}
	fmt.Printf("  vector width:         %d\n", bundle.FeatureCount())
	fmt.Printf("  trees:                %d\n", len(bundle.Forest.Trees))
	fmt.Printf("  scaler:               %s\n", bundle.Scaler.Kind)
	if len(bundle.Importance) > 0 {
		fmt.Printf("  importance tables:    %d classes\n", len(bundle.Importance))
	} else {
		fmt.Println("  importance tables:    none (feedback disabled)")
	}
}
