package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bill-transformer/internal/classifier"
)

var listKeywords bool

// classifyCmd shows how names would be classified, without a bill file.
var classifyCmd = &cobra.Command{
	Use:   "classify [name...]",
	Short: "Show the category and member a transaction name gets",
	Long: `Classify runs names through the same sanitizer, keyword table and member
overrides the process command uses and prints the result. With --list it
prints the keyword table in matching order.

Example:
  billx classify "【超市】大米(5kg)" 猫粮`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if listKeywords {
			printKeywords(a)
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("at least one name is required")
		}

		for i, raw := range args {
			if i > 0 {
				fmt.Println()
			}
			printClassification(a, raw, a.member(member))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&member, "member", "m", "", "Default member and payer")
	classifyCmd.Flags().BoolVar(&listKeywords, "list", false, "Print the keyword table in matching order")
}

func printClassification(a *app, raw, defaultMember string) {
	name := classifier.Sanitize(raw)
	keyword, triple, ok := a.classifier.Match(name)

	label := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s %s\n", label("原始名称:"), raw)
	fmt.Printf("%s %s\n", label("名称:    "), name)
	if ok {
		fmt.Printf("%s %s\n", label("关键词:  "), keyword)
		fmt.Printf("%s %s\n", label("分类:    "), strings.Join(triple[:], " / "))
	} else {
		fmt.Printf("%s %s\n", label("分类:    "), color.YellowString("未分类"))
	}
	fmt.Printf("%s %s\n", label("成员:    "), a.attributor.Attribute(name, defaultMember))
	fmt.Printf("%s %s\n", label("收付款人:"), defaultMember)
}

func printKeywords(a *app) {
	for _, keyword := range a.classifier.Keywords() {
		triple, _ := a.classifier.Classify(keyword)
		fmt.Printf("%-12s %s\n", keyword, strings.Join(triple[:], " / "))
	}
	fmt.Printf("\n%d keyword(s)\n", a.classifier.Len())
}
