package funnel

import (
	"context"
	"log/slog"
	"time"

	"PixChat/chat"
	"PixChat/entity"
	"PixChat/internal/config"
	"PixChat/internal/lib/sl"
)

const (
	WorkflowID chat.WorkflowID = "funnel"
)

// Step IDs
const (
	StepWelcome            chat.StepID = "welcome"
	StepAskName            chat.StepID = "ask_name"
	StepTease              chat.StepID = "tease"
	StepFirstReply         chat.StepID = "first_reply"
	StepSecondReply        chat.StepID = "second_reply"
	StepInvite             chat.StepID = "invite"
	StepCreateCharge       chat.StepID = "create_charge"
	StepAwaitPayment       chat.StepID = "await_payment"
	StepUpsellOffer        chat.StepID = "upsell_offer"
	StepCreateUpsellCharge chat.StepID = "create_upsell_charge"
	StepAwaitUpsellPayment chat.StepID = "await_upsell_payment"
	StepVipAccess          chat.StepID = "vip_access"
	StepVideoCall          chat.StepID = "video_call"
	StepFreeChat           chat.StepID = "free_chat"
)

// State data keys
const (
	KeyUserName     = chat.StateKeyUserName
	KeyCity         = chat.StateKeyCity
	KeyChargeTx     = "charge_tx"
	KeyChargeCode   = "charge_code"
	KeyChargeAmount = "charge_amount"
	KeySeqName      = "seq_name"
	KeySeqIndex     = "seq_index"
	KeyAwaitAudio   = "await_audio"
)

// Control-bar button IDs
const (
	BtnQuero       = "quero"
	BtnBora        = "bora"
	BtnAlreadyPaid = "already_paid"
	BtnUpsellYes   = "upsell_yes"
	BtnUpsellNo    = "upsell_no"
)

// PaymentService defines the payment session operations the funnel needs.
type PaymentService interface {
	CreateCharge(ctx context.Context, amountCents int64) (*entity.Charge, error)
	CheckTransaction(ctx context.Context, transactionID string) (entity.ChargeStatus, error)
}

// ReplyService produces a bot reply for free-chat mode. Treated as an
// opaque collaborator; any failure falls back to the scripted apology.
type ReplyService interface {
	Reply(ctx context.Context, sessionID, text string) (string, error)
}

// FunnelWorkflow implements the scripted sales funnel conversation.
type FunnelWorkflow struct {
	steps     map[chat.StepID]chat.Step
	sequences map[string]*sequence

	payment PaymentService
	replies ReplyService
	pauser  chat.Pauser
	log     *slog.Logger

	mediaBase    string
	vipURL       string
	videoCallURL string

	primaryAmount int64
	upsellAmount  int64
	verifyDelay   time.Duration
}

func NewFunnelWorkflow(conf *config.Config, payment PaymentService, replies ReplyService, pauser chat.Pauser, log *slog.Logger) *FunnelWorkflow {
	w := &FunnelWorkflow{
		steps:         make(map[chat.StepID]chat.Step),
		payment:       payment,
		replies:       replies,
		pauser:        pauser,
		log:           log.With(sl.Module("funnel")),
		mediaBase:     conf.Funnel.MediaBaseURL,
		vipURL:        conf.Funnel.VipURL,
		videoCallURL:  conf.Funnel.VideoCallURL,
		primaryAmount: conf.Payment.PrimaryAmountCents,
		upsellAmount:  conf.Payment.UpsellAmountCents,
		verifyDelay:   time.Duration(conf.Payment.VerifyDelaySeconds) * time.Second,
	}

	w.sequences = buildSequences()

	w.steps[StepWelcome] = &WelcomeStep{w: w}
	w.steps[StepAskName] = &AskNameStep{w: w}
	w.steps[StepTease] = &TeaseStep{w: w}
	w.steps[StepFirstReply] = &FirstReplyStep{w: w}
	w.steps[StepSecondReply] = &SecondReplyStep{w: w}
	w.steps[StepInvite] = &InviteStep{w: w}
	w.steps[StepCreateCharge] = &CreateChargeStep{w: w}
	w.steps[StepAwaitPayment] = &AwaitPaymentStep{w: w}
	w.steps[StepUpsellOffer] = &UpsellOfferStep{w: w}
	w.steps[StepCreateUpsellCharge] = &CreateUpsellChargeStep{w: w}
	w.steps[StepAwaitUpsellPayment] = &AwaitUpsellPaymentStep{w: w}
	w.steps[StepVipAccess] = &VipAccessStep{w: w}
	w.steps[StepVideoCall] = &VideoCallStep{w: w}
	w.steps[StepFreeChat] = &FreeChatStep{w: w}

	return w
}

func (w *FunnelWorkflow) ID() chat.WorkflowID      { return WorkflowID }
func (w *FunnelWorkflow) InitialStep() chat.StepID { return StepWelcome }

func (w *FunnelWorkflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

// chargeFromState rebuilds the active charge from session state data.
func chargeFromState(state *chat.SessionState) entity.Charge {
	return entity.Charge{
		TransactionID: state.GetString(KeyChargeTx),
		Code:          state.GetString(KeyChargeCode),
		AmountCents:   state.GetInt64(KeyChargeAmount),
		Status:        entity.ChargeUnknown,
	}
}

// storeCharge remembers the active charge in session state. A later charge
// overwrites the previous one; the abandoned transaction has no follow-up
// side effect on the provider side.
func storeCharge(state *chat.SessionState, charge *entity.Charge) {
	state.Set(KeyChargeTx, charge.TransactionID)
	state.Set(KeyChargeCode, charge.Code)
	state.Set(KeyChargeAmount, charge.AmountCents)
}
