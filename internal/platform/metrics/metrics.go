package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rifa_checkout_requests_total",
		Help: "Total de requisicoes de checkout por resultado",
	}, []string{"status"})

	numerosReservadosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rifa_numeros_reservados_total",
		Help: "Total de numeros de rifa reservados",
	})

	conflitosAlocacaoTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rifa_alocacao_conflitos_total",
		Help: "Conflitos de alocacao detectados pelo indice unico",
	})

	cobrancasOrfasTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rifa_cobrancas_orfas_total",
		Help: "Cobrancas criadas no gateway cuja gravacao local falhou",
	})

	conciliacoesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rifa_conciliacoes_total",
		Help: "Conciliacoes de pagamento por resultado",
	}, []string{"resultado"})

	gatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rifa_gateway_request_duration_seconds",
		Help:    "Latencia das chamadas ao gateway PIX",
		Buckets: prometheus.DefBuckets,
	}, []string{"operacao"})

	varreduraExpirados = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rifa_varredura_pagamentos_total",
		Help: "Pagamentos expirados processados pela varredura",
	})

	webhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rifa_webhooks_total",
		Help: "Notificacoes recebidas do gateway por resultado",
	}, []string{"resultado"})

	filaProcessados = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rifa_fila_conciliacao_processados_total",
		Help: "Pedidos de conciliacao consumidos pelo worker",
	}, []string{"resultado"})
)

func ObserveCheckout(status string) {
	checkoutRequestsTotal.WithLabelValues(status).Inc()
}

func AddNumerosReservados(n int) {
	numerosReservadosTotal.Add(float64(n))
}

func IncConflitoAlocacao() {
	conflitosAlocacaoTotal.Inc()
}

func IncCobrancaOrfa() {
	cobrancasOrfasTotal.Inc()
}

func ObserveConciliacao(resultado string) {
	conciliacoesTotal.WithLabelValues(resultado).Inc()
}

func ObserveGatewayDuration(operacao string, seconds float64) {
	gatewayDuration.WithLabelValues(operacao).Observe(seconds)
}

func AddVarredura(n int) {
	varreduraExpirados.Add(float64(n))
}

func ObserveWebhook(resultado string) {
	webhooksTotal.WithLabelValues(resultado).Inc()
}

func ObserveFilaProcessado(resultado string) {
	filaProcessados.WithLabelValues(resultado).Inc()
}
