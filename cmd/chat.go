package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadqual/internal/model"
)

var chatPhoneID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run a qualification conversation on the console",
	Long:  "Interactive console session against the real pipeline and store. Type /close to end the conversation, /state to inspect it, Ctrl-D to quit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		fmt.Printf("chatting as %s (Ctrl-D to quit)\n", chatPhoneID)
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			switch line {
			case "/close":
				if err := env.Pipeline.CloseConversation(ctx, chatPhoneID); err != nil {
					fmt.Println("error:", err)
					continue
				}
				fmt.Println("conversation closed")
				continue
			case "/state":
				printState(env, cmd)
				continue
			}

			reply, err := env.Pipeline.HandleMessage(ctx, chatPhoneID, line)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(reply)
		}
		return scanner.Err()
	},
}

func printState(env *env, cmd *cobra.Command) {
	state, err := env.Store.GetContactState(cmd.Context(), chatPhoneID)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if state == nil {
		fmt.Println("no conversation yet")
		return
	}
	fmt.Printf("stage=%s score=%d messages=%d\n", state.Stage, state.Score, state.MessageCount)
	for _, kind := range model.AllFieldKinds {
		if !state.Lead.Present(kind) {
			continue
		}
		mark := " "
		if state.Lead.Validated(kind) {
			mark = "*"
		}
		val := ""
		if kind == model.FieldBudget {
			val = state.Lead.Budget.String()
		} else {
			switch kind {
			case model.FieldName:
				val = state.Lead.Name.Value
			case model.FieldPhone:
				val = state.Lead.Phone.Value
			case model.FieldEmail:
				val = state.Lead.Email.Value
			case model.FieldLocation:
				val = state.Lead.Location.Value
			case model.FieldPropertyType:
				val = state.Lead.PropertyType.Value
			}
		}
		fmt.Printf("  %s %s = %s\n", mark, kind, val)
	}
}

func init() {
	chatCmd.Flags().StringVar(&chatPhoneID, "phone-id", "console:+971500000000", "contact identity for the session")
	rootCmd.AddCommand(chatCmd)
}
