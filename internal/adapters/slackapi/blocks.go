package slackapi

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"pepeeats/internal/domain"
)

// Identifikátory interaktivních prvků sdílené s HTTP handlerem.
const (
	ActionOpenOrderModal = "open_order_modal"
	ActionSnooze         = "snooze"
	ActionUnsubscribe    = "unsubscribe"
	ActionRateOrder      = "rate_order"

	CallbackOrderSubmission = "order_submission"

	BlockMealSelection  = "meal_selection_block"
	ActionMealSelection = "meal_selection_action"
	BlockBeneficiary    = "beneficiary_block"
	ActionBeneficiary   = "beneficiary_action"
)

var urgentEmojis = []string{"🚨", "🔥", "⏰", "🍔", "🏃‍♂️", "💨", "‼️", "🐸"}

var pepeImages = []string{
	"https://i.imgur.com/rvC5iI6.png",
	"https://i.imgur.com/VzBqS1h.png",
	"https://i.imgur.com/dJNDaF7.png",
}

// ReminderBlocks staví Block Kit strukturu denní připomínky.
func ReminderBlocks(dishes []string, remarks map[string]string, targetPrice int, orderDate time.Time) []slack.Block {
	emoji := urgentEmojis[rand.Intn(len(urgentEmojis))]
	dateKey := domain.DateKey(orderDate)

	lines := make([]string, 0, len(dishes))
	for _, dish := range dishes {
		line := "• " + dish
		if remark, ok := remarks[dish]; ok {
			line += " — _" + remark + "_"
		}
		lines = append(lines, line)
	}

	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType,
			fmt.Sprintf("%s PepeEats: Objednej oběd NA ZÍTRA! %s", emoji, emoji), true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Nabídka na %s za %d Kč:*", dateKey, targetPrice), false, false), nil, nil),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			strings.Join(lines, "\n"), false, false), nil, nil),
		slack.NewImageBlock(pepeImages[rand.Intn(len(pepeImages))], "A wild Pepe appears", "", nil),
		slack.NewDividerBlock(),
		slack.NewActionBlock("",
			slack.NewButtonBlockElement(ActionOpenOrderModal, dateKey,
				slack.NewTextBlockObject(slack.PlainTextType, "✅ Mám objednáno", true, false)).
				WithStyle(slack.StylePrimary),
			slack.NewButtonBlockElement(ActionSnooze, dateKey,
				slack.NewTextBlockObject(slack.PlainTextType, "😴 Dnes nerušit", true, false)),
			slack.NewButtonBlockElement(ActionUnsubscribe, "unsubscribe_clicked",
				slack.NewTextBlockObject(slack.PlainTextType, "Zrušit odběr", true, false)).
				WithStyle(slack.StyleDanger),
		),
	}
}

// MorningBlocks staví ranní připomínku s tlačítky hodnocení.
func MorningBlocks(meal string, orderDate time.Time) []slack.Block {
	dateKey := domain.DateKey(orderDate)
	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Dobré ráno! 🐸 Jen připomínám, že dnes máš k obědu: *%s*", meal), false, false), nil, nil),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			"Až dojíš, ohodnoť:", false, false), nil, nil),
		slack.NewActionBlock("",
			slack.NewButtonBlockElement(ActionRateOrder, dateKey+"|90",
				slack.NewTextBlockObject(slack.PlainTextType, "👍", true, false)),
			slack.NewButtonBlockElement(ActionRateOrder, dateKey+"|65",
				slack.NewTextBlockObject(slack.PlainTextType, "👌", true, false)),
			slack.NewButtonBlockElement(ActionRateOrder, dateKey+"|25",
				slack.NewTextBlockObject(slack.PlainTextType, "👎", true, false)),
		),
	}
}

// OrderModalView staví modál pro výběr jídla a volitelného příjemce.
// Datum objednávky cestuje v private_metadata.
func OrderModalView(dishes []string, orderDate time.Time) slack.ModalViewRequest {
	options := make([]*slack.OptionBlockObject, 0, len(dishes))
	for _, dish := range dishes {
		options = append(options, slack.NewOptionBlockObject(dish,
			slack.NewTextBlockObject(slack.PlainTextType, dish, true, false), nil))
	}

	mealSelect := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Vyber jídlo", true, false),
		ActionMealSelection, options...)
	mealInput := slack.NewInputBlock(BlockMealSelection,
		slack.NewTextBlockObject(slack.PlainTextType, "Tvoje volba", true, false), nil, mealSelect)

	beneficiarySelect := slack.NewOptionsSelectBlockElement(slack.OptTypeUser,
		slack.NewTextBlockObject(slack.PlainTextType, "Komu objednáváš?", true, false),
		ActionBeneficiary)
	beneficiaryInput := slack.NewInputBlock(BlockBeneficiary,
		slack.NewTextBlockObject(slack.PlainTextType, "Objednávka pro někoho jiného", true, false), nil, beneficiarySelect)
	beneficiaryInput.Optional = true

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackOrderSubmission,
		PrivateMetadata: domain.DateKey(orderDate),
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "PepeEats", true, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Uložit", true, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Zrušit", true, false),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
				"Super! Co sis objednal/a?", false, false), nil, nil),
			mealInput,
			beneficiaryInput,
		}},
	}
}
