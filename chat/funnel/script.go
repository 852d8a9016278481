package funnel

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"PixChat/chat"
)

// Typing indicators shown during scripted pauses.
const (
	indTyping    = "Digitando..."
	indRecording = "Gravando áudio..."
)

// Free-standing script texts. {name} and {price} are interpolated at send
// time from the session state.
const (
	textWaiting      = "Tô esperando, bb. Não me deixa esperando, a noite só tá começando... 😘"
	textAskName      = "Qual o seu nome?"
	textTease        = "Gostou, {name}? Isso é só um gostinho do que te espera... 😏"
	textVideoAsk     = "E aí, {name}? O que você achou do meu vídeo? 🔥"
	textBora         = "eae bb, bora?"
	textSendingPix   = "vou mandar meu pix pra você bb... 😍"
	textPixReady     = "Prontinho amor, o valor é só {price}. Faz o pagamento pra gente se ver na chamada de vídeo... 😍"
	textPixFailed    = "Ops, não consegui gerar o PIX agora, amor. Tenta de novo em um minutinho."
	textChecking     = "Ok amor, só um momento que vou verificar... 😍"
	textNotReceived  = "Amor, ainda não apareceu aqui pra mim. Tenta verificar se o PIX foi enviado direitinho. 🥺"
	textUpsellOffer  = "Amor, acabei de liberar meu número pessoal pra você... Quer pagar só mais {upsell_price} pra gente conversar por lá? 😏"
	textUpsellYes    = "Oba! Sabia que você ia querer, amor. Vou gerar o PIX de {upsell_price} pra você."
	textUpsellNo     = "Tudo bem, amor. Sem problemas! Podemos fazer só a chamada de vídeo então. Clica no botão abaixo pra gente começar. 😍"
	textUpsellPaid   = "Pagamento confirmado! 🔥 Clica no botão abaixo pra gente começar agora mesmo!"
	textApology      = "Desculpe, não consegui processar sua mensagem. Tente novamente mais tarde."
	labelAwaitingPix = "Aguardando pagamento..."
	labelAlreadyPaid = "Já paguei"
	labelQuero       = "Quero"
	labelBora        = "bora bb ❤️"
	labelUpsellYes   = "Sim, eu quero!"
	labelUpsellNo    = "Não, obrigado"
	labelVipAccess   = "Acessar Conteúdo VIP"
	labelVideoCall   = "Iniciar chamada de vídeo"
)

type actionKind int

const (
	actPause actionKind = iota
	actText
	actAudio
	actImage
	actVideo
)

// scriptAction is one declarative element of a scripted sequence.
type scriptAction struct {
	kind      actionKind
	d         time.Duration // actPause only
	indicator string        // typing indicator during the pause, "" = silent wait
	text      string        // actText payload
	media     string        // media file name under the media base URL
}

func pa(d time.Duration, indicator string) scriptAction {
	return scriptAction{kind: actPause, d: d, indicator: indicator}
}
func txt(text string) scriptAction  { return scriptAction{kind: actText, text: text} }
func aud(media string) scriptAction { return scriptAction{kind: actAudio, media: media} }
func img(media string) scriptAction { return scriptAction{kind: actImage, media: media} }
func vid(media string) scriptAction { return scriptAction{kind: actVideo, media: media} }

// sequence is an ordered run of scripted actions followed by a transition.
// An empty next keeps the session in the current step.
type sequence struct {
	name    string
	actions []scriptAction
	next    chat.StepID
}

// Sequence names (also stored in session state while suspended on audio).
const (
	seqWelcome          = "welcome"
	seqNameReply        = "name_reply"
	seqTease            = "tease"
	seqFirstReply       = "first_reply"
	seqSecondReply      = "second_reply"
	seqBora             = "bora"
	seqPaymentConfirmed = "payment_confirmed"
	seqPaymentPending   = "payment_pending"
)

func buildSequences() map[string]*sequence {
	seqs := []*sequence{
		{
			name: seqWelcome,
			actions: []scriptAction{
				pa(2*time.Second, indRecording),
				aud("welcome_1.mp3"),
				pa(2*time.Second, indRecording),
				aud("welcome_2.mp3"),
				pa(1500*time.Millisecond, indTyping),
				txt(textWaiting),
				pa(time.Second, indTyping),
				txt(textAskName),
			},
			next: StepAskName,
		},
		{
			name: seqNameReply,
			actions: []scriptAction{
				pa(2*time.Second, ""),
				pa(2*time.Second, indRecording),
				aud("name_reply.mp3"),
			},
			next: StepTease,
		},
		{
			name: seqTease,
			actions: []scriptAction{
				pa(2*time.Second, indRecording),
				aud("tease_1.mp3"),
				pa(2*time.Second, indTyping),
				img("tease_1.jpg"),
				pa(1500*time.Millisecond, indTyping),
				txt(textTease),
			},
			next: StepFirstReply,
		},
		{
			name: seqFirstReply,
			actions: []scriptAction{
				pa(2*time.Second, ""),
				pa(2*time.Second, indRecording),
				aud("flirt_1.mp3"),
			},
			next: StepSecondReply,
		},
		{
			name: seqSecondReply,
			actions: []scriptAction{
				pa(2*time.Second, ""),
				pa(3*time.Second, indRecording),
				aud("flirt_2.mp3"),
				pa(2*time.Second, indTyping),
				img("tease_2.jpg"),
				aud("flirt_3.mp3"),
				aud("flirt_4.mp3"),
				pa(2*time.Second, indTyping),
				vid("preview.mp4"),
				aud("flirt_5.mp3"),
				pa(1500*time.Millisecond, indTyping),
				txt(textVideoAsk),
				pa(1500*time.Millisecond, indTyping),
				txt(textBora),
			},
			next: StepInvite,
		},
		{
			name: seqBora,
			actions: []scriptAction{
				pa(2*time.Second, indRecording),
				aud("invite_1.mp3"),
				aud("invite_2.mp3"),
				aud("invite_3.mp3"),
			},
			next: StepCreateCharge,
		},
		{
			name: seqPaymentConfirmed,
			actions: []scriptAction{
				pa(2*time.Second, indRecording),
				aud("confirmed.mp3"),
				txt(textUpsellOffer),
			},
			next: StepUpsellOffer,
		},
		{
			name: seqPaymentPending,
			actions: []scriptAction{
				pa(2*time.Second, indRecording),
				aud("pending.mp3"),
				txt(textNotReceived),
			},
		},
	}

	m := make(map[string]*sequence, len(seqs))
	for _, s := range seqs {
		m[s.name] = s
	}
	return m
}

// startSequence begins a scripted sequence from its first action.
func (w *FunnelWorkflow) startSequence(ctx context.Context, m chat.Messenger, state *chat.SessionState, name string) chat.StepResult {
	seq, ok := w.sequences[name]
	if !ok {
		return chat.StepResult{Error: fmt.Errorf("unknown sequence: %s", name)}
	}
	return w.runSequence(ctx, m, state, seq, 0)
}

// runSequence executes actions in order. An audio emission suspends the
// sequence: its position is saved in state and the session waits for the
// playback-ended signal of that message before proceeding.
func (w *FunnelWorkflow) runSequence(ctx context.Context, m chat.Messenger, state *chat.SessionState, seq *sequence, from int) chat.StepResult {
	for i := from; i < len(seq.actions); i++ {
		a := seq.actions[i]
		switch a.kind {
		case actPause:
			w.pause(ctx, m, a.d, a.indicator)
		case actText:
			if err := m.SendText(w.interpolate(a.text, state)); err != nil {
				return chat.StepResult{Error: err}
			}
		case actImage:
			if err := m.SendImage(w.mediaURL(a.media)); err != nil {
				return chat.StepResult{Error: err}
			}
		case actVideo:
			if err := m.SendVideo(w.mediaURL(a.media)); err != nil {
				return chat.StepResult{Error: err}
			}
		case actAudio:
			msg, err := m.SendAudio(w.mediaURL(a.media))
			if err != nil {
				return chat.StepResult{Error: err}
			}
			state.Set(KeySeqName, seq.name)
			state.Set(KeySeqIndex, i+1)
			state.Set(KeyAwaitAudio, msg.ID)
			return chat.StepResult{}
		}
	}

	state.Delete(KeySeqName)
	state.Delete(KeySeqIndex)
	state.Delete(KeyAwaitAudio)
	return chat.StepResult{NextStep: seq.next}
}

// resumeSequence continues a suspended sequence when the awaited playback
// end arrives. The second return value reports whether the input was a
// media-ended signal (and therefore consumed here).
func (w *FunnelWorkflow) resumeSequence(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) (chat.StepResult, bool) {
	if input.MediaEndedID == 0 {
		return chat.StepResult{}, false
	}
	awaited := state.GetInt64(KeyAwaitAudio)
	if awaited == 0 || input.MediaEndedID != awaited {
		// Stale or unknown signal, swallow it.
		return chat.StepResult{}, true
	}

	seq, ok := w.sequences[state.GetString(KeySeqName)]
	if !ok {
		w.log.Warn("resume for unknown sequence", slog.String("sequence", state.GetString(KeySeqName)))
		return chat.StepResult{}, true
	}

	return w.runSequence(ctx, m, state, seq, state.GetInt(KeySeqIndex)), true
}

// pause shows the given indicator for the duration of a scripted delay.
func (w *FunnelWorkflow) pause(ctx context.Context, m chat.Messenger, d time.Duration, indicator string) {
	if indicator != "" {
		_ = m.ShowTyping(indicator)
	}
	w.pauser.Pause(ctx, d)
	if indicator != "" {
		_ = m.HideTyping()
	}
}

func (w *FunnelWorkflow) interpolate(text string, state *chat.SessionState) string {
	if strings.Contains(text, "{upsell_price}") {
		text = strings.ReplaceAll(text, "{upsell_price}", chat.FormatPrice(w.upsellAmount))
	}
	return chat.Interpolate(text, state, KeyUserName, state.GetInt64(KeyChargeAmount))
}

func (w *FunnelWorkflow) mediaURL(name string) string {
	return strings.TrimRight(w.mediaBase, "/") + "/" + name
}

// welcomeImageURL builds the geo-personalized welcome image address.
func (w *FunnelWorkflow) welcomeImageURL(city string) string {
	return fmt.Sprintf("%s/welcome.jpg?city=%s", strings.TrimRight(w.mediaBase, "/"), url.QueryEscape(city))
}
