package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/lingua/internal/database"
	"github.com/example/lingua/internal/excel"
	"github.com/example/lingua/pkg/models"
)

func newImportCommand(load appLoader) *cobra.Command {
	cfg := excel.DefaultImportConfig()
	var kind string

	command := &cobra.Command{
		Use:   "import FILE",
		Short: "Import vocabulary or grammar items from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := models.ParseItemKind(kind)
			if err != nil {
				return err
			}
			cfg.Kind = parsed
			cfg.FilePath = args[0]

			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			importer := excel.NewImporter(database.NewItemRepository(a.db), a.logger)
			result, err := importer.Import(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed: %d, created: %d, updated: %d, skipped: %d\n",
				result.TotalProcessed, result.Created, result.Updated, result.Skipped)
			for _, e := range result.Errors {
				fmt.Fprintln(out, e)
			}
			return nil
		},
	}

	flags := command.Flags()
	flags.StringVar(&kind, "kind", string(models.KindVocab), "kind of the imported items when no kind column is set (vocab or grammar)")
	flags.StringVar(&cfg.SheetName, "sheet", "", "sheet to import, defaults to the first one")
	flags.IntVar(&cfg.StartRow, "start-row", cfg.StartRow, "first row to import (1-based)")
	flags.BoolVar(&cfg.TopicHeaders, "topic-headers", cfg.TopicHeaders, "treat rows with only the text cell filled as topic headers")
	flags.StringVar(&cfg.KindColumn, "kind-col", cfg.KindColumn, "column with the item kind")
	flags.StringVar(&cfg.TextColumn, "text-col", cfg.TextColumn, "column with the word or grammar point")
	flags.StringVar(&cfg.TranslationColumn, "translation-col", cfg.TranslationColumn, "column with the translation")
	flags.StringVar(&cfg.TopicColumn, "topic-col", cfg.TopicColumn, "column with the topic")
	flags.StringVar(&cfg.StructureColumn, "structure-col", cfg.StructureColumn, "column with the grammar structure")
	flags.StringVar(&cfg.VerbGroupColumn, "verb-group-col", cfg.VerbGroupColumn, "column with the verb group")
	flags.StringVar(&cfg.TenseColumn, "tense-col", cfg.TenseColumn, "column with the tense")
	flags.StringVar(&cfg.PersonColumn, "person-col", cfg.PersonColumn, "column with the grammatical person")
	return command
}
