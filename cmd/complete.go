package cmd

import (
	"github.com/etnz/tdasync"
	"github.com/etnz/tdasync/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the commands and flags for shell completion.
func Completion() *complete.Command {
	var types predict.Set
	for _, t := range tdasync.TransactionTypes() {
		types = append(types, string(t))
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"sync": {Flags: map[string]complete.Predictor{
				"type":     types,
				"symbol":   predict.Something,
				"max-gap":  predict.Something,
				"no-retry": predict.Nothing,
				"raw":      predict.Nothing,
			}},
			"status": {Flags: map[string]complete.Predictor{
				"raw": predict.Nothing,
			}},
			"login": {},
			"topic": {
				Flags: map[string]complete.Predictor{"raw": predict.Nothing},
				Args:  predict.Set(docs.AllTopics()),
			},
			"help": {},
		},
		Flags: map[string]complete.Predictor{
			"settings": predict.Files("*.json"),
			"secrets":  predict.Files("*.json"),
		},
	}
}
