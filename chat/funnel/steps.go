package funnel

import (
	"context"
	"log/slog"
	"time"

	"PixChat/chat"
	"PixChat/entity"
	"PixChat/internal/lib/sl"
)

// WelcomeStep — opening audio sequence, optionally preceded by the
// geo-personalized welcome image.
type WelcomeStep struct{ w *FunnelWorkflow }

func (s *WelcomeStep) ID() chat.StepID { return StepWelcome }

func (s *WelcomeStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	if city := state.GetString(KeyCity); city != "" {
		if err := m.SendImage(s.w.welcomeImageURL(city)); err != nil {
			return chat.StepResult{Error: err}
		}
	}
	return s.w.startSequence(ctx, m, state, seqWelcome)
}

func (s *WelcomeStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}
	return chat.StepResult{}
}

// AskNameStep — wait for the visitor's name, capture it for interpolation
// into later script text.
type AskNameStep struct{ w *FunnelWorkflow }

func (s *AskNameStep) ID() chat.StepID { return StepAskName }

func (s *AskNameStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	_ = m.ShowControls(entity.Controls{Mode: entity.ControlsInput, Input: true})
	return chat.StepResult{}
}

func (s *AskNameStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}

	name := chat.SanitizeName(input.Text)
	if name == "" {
		return chat.StepResult{}
	}

	state.Set(KeyUserName, name)
	_ = m.ShowControls(entity.Controls{Mode: entity.ControlsNone})
	return s.w.startSequence(ctx, m, state, seqNameReply)
}

// TeaseStep — single "Quero" button gating the first media drop.
type TeaseStep struct{ w *FunnelWorkflow }

func (s *TeaseStep) ID() chat.StepID { return StepTease }

func (s *TeaseStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	_ = m.ShowControls(entity.Controls{
		Mode:    entity.ControlsButtons,
		Buttons: []entity.ControlButton{{ID: BtnQuero, Label: labelQuero}},
	})
	return chat.StepResult{}
}

func (s *TeaseStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}
	if input.ButtonID != BtnQuero {
		return chat.StepResult{}
	}

	_ = m.RecordUserMessage(labelQuero)
	_ = m.ShowControls(entity.Controls{Mode: entity.ControlsNone})
	return s.w.startSequence(ctx, m, state, seqTease)
}

// FirstReplyStep — any visitor text advances the script.
type FirstReplyStep struct{ w *FunnelWorkflow }

func (s *FirstReplyStep) ID() chat.StepID { return StepFirstReply }

func (s *FirstReplyStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	_ = m.ShowControls(entity.Controls{Mode: entity.ControlsInput, Input: true})
	return chat.StepResult{}
}

func (s *FirstReplyStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}
	if input.Text == "" {
		return chat.StepResult{}
	}

	_ = m.ShowControls(entity.Controls{Mode: entity.ControlsNone})
	return s.w.startSequence(ctx, m, state, seqFirstReply)
}

// SecondReplyStep — second free reply, then the long media sequence that
// sets up the payment invite.
type SecondReplyStep struct{ w *FunnelWorkflow }

func (s *SecondReplyStep) ID() chat.StepID { return StepSecondReply }

func (s *SecondReplyStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	_ = m.ShowControls(entity.Controls{Mode: entity.ControlsInput, Input: true})
	return chat.StepResult{}
}

func (s *SecondReplyStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}
	if input.Text == "" {
		return chat.StepResult{}
	}

	_ = m.ShowControls(entity.Controls{Mode: entity.ControlsNone})
	return s.w.startSequence(ctx, m, state, seqSecondReply)
}

// InviteStep — "bora" button; tapping it plays the invite audios and rolls
// into charge creation. Charge-creation failure re-enters this step so the
// button is offered again.
type InviteStep struct{ w *FunnelWorkflow }

func (s *InviteStep) ID() chat.StepID { return StepInvite }

func (s *InviteStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	_ = m.ShowControls(entity.Controls{
		Mode:    entity.ControlsButtons,
		Buttons: []entity.ControlButton{{ID: BtnBora, Label: labelBora}},
	})
	return chat.StepResult{}
}

func (s *InviteStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}
	if input.ButtonID != BtnBora {
		return chat.StepResult{}
	}

	_ = m.RecordUserMessage(labelBora)
	_ = m.ShowControls(entity.Controls{Mode: entity.ControlsNone})
	return s.w.startSequence(ctx, m, state, seqBora)
}

// CreateChargeStep — auto step: request the primary charge from the
// provider. At most one charge is created per visit to this step.
type CreateChargeStep struct{ w *FunnelWorkflow }

func (s *CreateChargeStep) ID() chat.StepID { return StepCreateCharge }

func (s *CreateChargeStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	if err := m.SendText(textSendingPix); err != nil {
		return chat.StepResult{Error: err}
	}
	s.w.pause(ctx, m, 3*time.Second, indTyping)

	charge, err := s.w.payment.CreateCharge(ctx, s.w.primaryAmount)
	if err != nil {
		s.w.log.Error("create charge", sl.Err(err), slog.String("session_id", state.SessionID))
		_ = m.SendText(textPixFailed)
		return chat.StepResult{NextStep: StepInvite}
	}

	storeCharge(state, charge)
	return chat.StepResult{NextStep: StepAwaitPayment}
}

func (s *CreateChargeStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	return chat.StepResult{}
}

// AwaitPaymentStep — render the payable code and wait for the visitor to
// claim payment. Verification of the primary charge branches to the upsell
// offer, never straight to a terminal step.
type AwaitPaymentStep struct{ w *FunnelWorkflow }

func (s *AwaitPaymentStep) ID() chat.StepID { return StepAwaitPayment }

func (s *AwaitPaymentStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	if err := m.SendText(s.w.interpolate(textPixReady, state)); err != nil {
		return chat.StepResult{Error: err}
	}
	if err := m.SendPaymentCode(chargeFromState(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	_ = m.ShowControls(entity.Controls{
		Mode:    entity.ControlsButtons,
		Label:   labelAwaitingPix,
		Buttons: []entity.ControlButton{{ID: BtnAlreadyPaid, Label: labelAlreadyPaid}},
	})
	return chat.StepResult{}
}

func (s *AwaitPaymentStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}
	if input.ButtonID != BtnAlreadyPaid {
		return chat.StepResult{}
	}

	status, active := s.w.runVerification(ctx, m, state)
	if !active {
		return chat.StepResult{}
	}

	if status == entity.ChargePaid {
		s.w.log.Warn("payment confirmed",
			slog.String("session_id", state.SessionID),
			slog.Int64("amount_cents", state.GetInt64(KeyChargeAmount)),
		)
		return s.w.startSequence(ctx, m, state, seqPaymentConfirmed)
	}
	return s.w.startSequence(ctx, m, state, seqPaymentPending)
}

// UpsellOfferStep — yes/no choice after the primary payment confirmed.
type UpsellOfferStep struct{ w *FunnelWorkflow }

func (s *UpsellOfferStep) ID() chat.StepID { return StepUpsellOffer }

func (s *UpsellOfferStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	_ = m.ShowControls(entity.Controls{
		Mode: entity.ControlsButtons,
		Buttons: []entity.ControlButton{
			{ID: BtnUpsellYes, Label: labelUpsellYes},
			{ID: BtnUpsellNo, Label: labelUpsellNo},
		},
	})
	return chat.StepResult{}
}

func (s *UpsellOfferStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}

	switch input.ButtonID {
	case BtnUpsellYes:
		_ = m.RecordUserMessage(labelUpsellYes)
		_ = m.ShowControls(entity.Controls{Mode: entity.ControlsNone})
		s.w.pause(ctx, m, 2*time.Second, indTyping)
		if err := m.SendText(s.w.interpolate(textUpsellYes, state)); err != nil {
			return chat.StepResult{Error: err}
		}
		return chat.StepResult{NextStep: StepCreateUpsellCharge}

	case BtnUpsellNo:
		_ = m.RecordUserMessage(labelUpsellNo)
		_ = m.ShowControls(entity.Controls{Mode: entity.ControlsNone})
		s.w.pause(ctx, m, 2*time.Second, indTyping)
		if err := m.SendText(textUpsellNo); err != nil {
			return chat.StepResult{Error: err}
		}
		return chat.StepResult{NextStep: StepVideoCall}
	}

	return chat.StepResult{}
}

// CreateUpsellChargeStep — auto step: request the upsell charge. The
// primary transaction id is overwritten; no idempotency key is used, a
// retry is a brand-new provider-side transaction.
type CreateUpsellChargeStep struct{ w *FunnelWorkflow }

func (s *CreateUpsellChargeStep) ID() chat.StepID { return StepCreateUpsellCharge }

func (s *CreateUpsellChargeStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	charge, err := s.w.payment.CreateCharge(ctx, s.w.upsellAmount)
	if err != nil {
		s.w.log.Error("create upsell charge", sl.Err(err), slog.String("session_id", state.SessionID))
		_ = m.SendText(textPixFailed)
		return chat.StepResult{NextStep: StepUpsellOffer}
	}

	storeCharge(state, charge)
	return chat.StepResult{NextStep: StepAwaitUpsellPayment}
}

func (s *CreateUpsellChargeStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	return chat.StepResult{}
}

// AwaitUpsellPaymentStep — like AwaitPayment but for the upsell charge;
// confirmation goes to the VIP hand-off.
type AwaitUpsellPaymentStep struct{ w *FunnelWorkflow }

func (s *AwaitUpsellPaymentStep) ID() chat.StepID { return StepAwaitUpsellPayment }

func (s *AwaitUpsellPaymentStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	if err := m.SendPaymentCode(chargeFromState(state)); err != nil {
		return chat.StepResult{Error: err}
	}
	_ = m.ShowControls(entity.Controls{
		Mode:    entity.ControlsButtons,
		Label:   labelAwaitingPix,
		Buttons: []entity.ControlButton{{ID: BtnAlreadyPaid, Label: labelAlreadyPaid}},
	})
	return chat.StepResult{}
}

func (s *AwaitUpsellPaymentStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if r, handled := s.w.resumeSequence(ctx, m, state, input); handled {
		return r
	}
	if input.ButtonID != BtnAlreadyPaid {
		return chat.StepResult{}
	}

	status, active := s.w.runVerification(ctx, m, state)
	if !active {
		return chat.StepResult{}
	}

	if status == entity.ChargePaid {
		s.w.log.Warn("upsell payment confirmed",
			slog.String("session_id", state.SessionID),
			slog.Int64("amount_cents", state.GetInt64(KeyChargeAmount)),
		)
		if err := m.SendText(textUpsellPaid); err != nil {
			return chat.StepResult{Error: err}
		}
		return chat.StepResult{NextStep: StepVipAccess}
	}
	return s.w.startSequence(ctx, m, state, seqPaymentPending)
}

// VipAccessStep — terminal hand-off to the VIP link, then free chat.
type VipAccessStep struct{ w *FunnelWorkflow }

func (s *VipAccessStep) ID() chat.StepID { return StepVipAccess }

func (s *VipAccessStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	_ = m.ShowControls(entity.Controls{
		Mode:    entity.ControlsLink,
		LinkURL: s.w.vipURL,
		Label:   labelVipAccess,
		Input:   true,
	})
	return chat.StepResult{NextStep: StepFreeChat}
}

func (s *VipAccessStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	return chat.StepResult{}
}

// VideoCallStep — terminal hand-off to the video call link, then free chat.
type VideoCallStep struct{ w *FunnelWorkflow }

func (s *VideoCallStep) ID() chat.StepID { return StepVideoCall }

func (s *VideoCallStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	_ = m.ShowControls(entity.Controls{
		Mode:    entity.ControlsLink,
		LinkURL: s.w.videoCallURL,
		Label:   labelVideoCall,
		Input:   true,
	})
	return chat.StepResult{NextStep: StepFreeChat}
}

func (s *VideoCallStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	return chat.StepResult{}
}

// FreeChatStep is the terminal unscripted mode. Every visitor text is
// forwarded verbatim to the reply collaborator; failures fall back to the
// scripted apology and free chat continues.
type FreeChatStep struct{ w *FunnelWorkflow }

func (s *FreeChatStep) ID() chat.StepID { return StepFreeChat }

func (s *FreeChatStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	return chat.StepResult{}
}

func (s *FreeChatStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if input.Text == "" {
		return chat.StepResult{}
	}

	s.w.pause(ctx, m, 1500*time.Millisecond, indTyping)

	reply := textApology
	if s.w.replies != nil {
		var err error
		reply, err = s.w.replies.Reply(ctx, state.SessionID, input.Text)
		if err != nil {
			s.w.log.Error("free chat reply", sl.Err(err), slog.String("session_id", state.SessionID))
			reply = textApology
		}
	}
	if err := m.SendText(reply); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

// runVerification performs the shared "I already paid" handling: records
// the tap, waits the fixed settlement delay, polls the provider once.
// active=false means there is no charge for this step — a silent no-op. A
// lookup failure resolves as not paid.
func (w *FunnelWorkflow) runVerification(ctx context.Context, m chat.Messenger, state *chat.SessionState) (entity.ChargeStatus, bool) {
	tx := state.GetString(KeyChargeTx)
	if tx == "" {
		return entity.ChargeUnknown, false
	}

	_ = m.RecordUserMessage(labelAlreadyPaid)
	w.pause(ctx, m, 2*time.Second, indTyping)
	_ = m.SendText(textChecking)

	// Single deterministic delay so the poll does not outrun settlement.
	w.pauser.Pause(ctx, w.verifyDelay)

	status, err := w.payment.CheckTransaction(ctx, tx)
	if err != nil {
		w.log.Error("check transaction", sl.Err(err), slog.String("transaction_id", tx))
		return entity.ChargeUnpaid, true
	}
	return status, true
}
