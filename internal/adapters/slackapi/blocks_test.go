package slackapi

import (
	"testing"
	"time"

	"github.com/slack-go/slack"
)

var orderDay = time.Date(2024, time.June, 13, 0, 0, 0, 0, time.UTC)

func TestOrderModalViewCarriesDateAndDishes(t *testing.T) {
	view := OrderModalView([]string{"Guláš", "Svíčková"}, orderDay)

	if view.CallbackID != CallbackOrderSubmission {
		t.Fatalf("neočekávané callback_id %q", view.CallbackID)
	}
	if view.PrivateMetadata != "2024-06-13" {
		t.Fatalf("datum objednávky má cestovat v private_metadata, je %q", view.PrivateMetadata)
	}

	var input *slack.InputBlock
	for _, block := range view.Blocks.BlockSet {
		if b, ok := block.(*slack.InputBlock); ok && b.BlockID == BlockMealSelection {
			input = b
			break
		}
	}
	if input == nil {
		t.Fatal("modál má obsahovat výběr jídla")
	}
	sel, ok := input.Element.(*slack.SelectBlockElement)
	if !ok {
		t.Fatalf("výběr jídla má být select, je %T", input.Element)
	}
	if len(sel.Options) != 2 || sel.Options[0].Value != "Guláš" {
		t.Fatalf("možnosti mají odpovídat jídelníčku: %+v", sel.Options)
	}
}

func TestOrderModalBeneficiaryIsOptional(t *testing.T) {
	view := OrderModalView([]string{"Guláš"}, orderDay)

	for _, block := range view.Blocks.BlockSet {
		if b, ok := block.(*slack.InputBlock); ok && b.BlockID == BlockBeneficiary {
			if !b.Optional {
				t.Fatal("výběr příjemce musí být volitelný")
			}
			return
		}
	}
	t.Fatal("modál má obsahovat výběr příjemce")
}

func TestMorningBlocksEncodeRatingValues(t *testing.T) {
	blocks := MorningBlocks("Guláš", orderDay)

	var actions *slack.ActionBlock
	for _, block := range blocks {
		if b, ok := block.(*slack.ActionBlock); ok {
			actions = b
			break
		}
	}
	if actions == nil {
		t.Fatal("ranní zpráva má obsahovat tlačítka hodnocení")
	}

	want := map[string]bool{
		"2024-06-13|90": false,
		"2024-06-13|65": false,
		"2024-06-13|25": false,
	}
	for _, el := range actions.Elements.ElementSet {
		btn, ok := el.(*slack.ButtonBlockElement)
		if !ok {
			continue
		}
		if btn.ActionID != ActionRateOrder {
			t.Fatalf("neočekávané action_id %q", btn.ActionID)
		}
		if _, known := want[btn.Value]; !known {
			t.Fatalf("neočekávaná hodnota tlačítka %q", btn.Value)
		}
		want[btn.Value] = true
	}
	for value, seen := range want {
		if !seen {
			t.Fatalf("chybí tlačítko s hodnotou %q", value)
		}
	}
}

func TestReminderBlocksAttachRemarks(t *testing.T) {
	blocks := ReminderBlocks([]string{"Guláš"}, map[string]string{"Guláš": "osvědčená volba"}, 125, orderDay)

	found := false
	for _, block := range blocks {
		section, ok := block.(*slack.SectionBlock)
		if !ok || section.Text == nil {
			continue
		}
		if section.Text.Text == "• Guláš — _osvědčená volba_" {
			found = true
		}
	}
	if !found {
		t.Fatal("poznámka k jídlu se má připojit kurzívou za název")
	}
}
