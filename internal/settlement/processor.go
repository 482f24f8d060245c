package settlement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/engine"
	"github.com/radieske/lottery-ops-platform-poc/pkg/contracts/events"
)

// MessageReader abstrai o consumo do Kafka (o *kafka.Reader satisfaz)
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// MessageWriter abstrai a publicação no Kafka (o *kafka.Writer satisfaz)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Repo define a persistência usada na liquidação
type Repo interface {
	TicketsForDraw(ctx context.Context, drawID string) ([]engine.Ticket, error)
	SettleTicket(ctx context.Context, ticketID, status string, prizeCentavos int64) error
	InsertWinnerNotification(ctx context.Context, ticketID, agentID, drawID string, prizeCentavos int64) error
	MarkDrawCompleted(ctx context.Context, drawID string) error
}

// Broadcaster publica a atualização do sorteio no canal do dashboard
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome draw_results_posted e liquida os bilhetes do sorteio:
// avalia cada aposta, marca won/lost, registra notificações de prêmio,
// publica ticket_settled e avisa o dashboard via Redis Pub/Sub.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log       *zap.Logger
	Reader    MessageReader
	Repo      Repo
	Rates     game.RateTable
	Settled   MessageWriter // tópico ticket_settled
	DLQ       MessageWriter // opcional
	Broadcast Broadcaster   // opcional
	Channel   string        // canal Redis do dashboard

	OnConsumed func()       // métricas (counter++)
	OnSettled  func(string) // métricas por status (won/lost)
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e liquidação
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.DrawResultsPosted
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		if err := p.settleDrawWithRetry(ctx, ev); err != nil {
			p.Log.Error("settle draw failed", zap.String("drawId", ev.DrawID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("settle")
			}
			if p.DLQ != nil {
				_ = p.DLQ.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()})
			}
		}
	}
}

// settleDrawWithRetry tenta liquidar até 3 vezes antes de mandar pra DLQ
func (p *Processor) settleDrawWithRetry(ctx context.Context, ev events.DrawResultsPosted) error {
	const retries = 3
	var err error
	for i := 0; i < retries; i++ {
		if err = p.settleDraw(ctx, ev); err == nil {
			return nil
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return err
}

// settleDraw avalia todos os bilhetes do sorteio contra os números vencedores
func (p *Processor) settleDraw(ctx context.Context, ev events.DrawResultsPosted) error {
	tickets, err := p.Repo.TicketsForDraw(ctx, ev.DrawID)
	if err != nil {
		return err
	}

	var settledWon, settledLost int
	for _, t := range tickets {
		// claimed/cancelled já foram tratados; só pending muda de estado
		if t.Status != "pending" {
			continue
		}

		var prize int64
		var winType string
		for _, b := range t.Bets {
			match := game.Evaluate(game.Bet{Combination: b.Combination, BetType: b.BetType}, ev.WinningNumbers)
			if !match.IsWinning {
				continue
			}
			prize += p.Rates.Prize(match.WinType, b.AmountCentavos)
			if winType == "" {
				winType = match.WinType
			}
		}

		status := "lost"
		if prize > 0 {
			status = "won"
		}

		if err := p.Repo.SettleTicket(ctx, t.ID, status, prize); err != nil {
			return err
		}

		if status == "won" {
			settledWon++
			if err := p.Repo.InsertWinnerNotification(ctx, t.ID, t.AgentID, ev.DrawID, prize); err != nil {
				p.Log.Warn("winner notification insert failed", zap.String("ticketId", t.ID), zap.Error(err))
			}
		} else {
			settledLost++
		}

		settled := events.TicketSettled{
			TicketID:      t.ID,
			TicketNumber:  t.TicketNumber,
			AgentID:       t.AgentID,
			DrawID:        ev.DrawID,
			Status:        status,
			WinType:       winType,
			PrizeCentavos: prize,
			Ts:            time.Now(),
		}
		b, _ := json.Marshal(settled)
		if err := p.Settled.WriteMessages(ctx, kafka.Message{Key: []byte(t.ID), Value: b}); err != nil {
			p.Log.Warn("ticket_settled publish failed", zap.String("ticketId", t.ID), zap.Error(err))
		}
		if p.OnSettled != nil {
			p.OnSettled(status)
		}
	}

	if err := p.Repo.MarkDrawCompleted(ctx, ev.DrawID); err != nil {
		return err
	}

	// avisa o dashboard ao vivo
	if p.Broadcast != nil && p.Channel != "" {
		upd, _ := json.Marshal(map[string]any{
			"drawId": ev.DrawID,
			"payload": map[string]any{
				"winningNumbers": ev.WinningNumbers,
				"settledWon":     settledWon,
				"settledLost":    settledLost,
			},
		})
		if err := p.Broadcast.Publish(ctx, p.Channel, upd); err != nil {
			p.Log.Warn("dashboard broadcast failed", zap.Error(err))
		}
	}

	p.Log.Info("draw settled",
		zap.String("drawId", ev.DrawID),
		zap.Int("won", settledWon),
		zap.Int("lost", settledLost),
	)
	return nil
}
