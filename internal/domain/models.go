package domain

import (
	"time"
)

type (
	CampanhaID  string
	CompradorID string
	PagamentoID string
	NumeroID    string
	AdminID     string
)

// TierUnitario identifica a compra pelo preço unitário da campanha, sem combo.
const TierUnitario = "unit"

// PrecosCombo mapeia o rótulo do combo (ex.: "+70") para o preço unitário sobrescrito.
type PrecosCombo map[string]Centavos

type Campanha struct {
	ID            CampanhaID     `gorm:"column:id;type:char(26);primaryKey"`
	Titulo        string         `gorm:"column:titulo;type:text;not null"`
	Descricao     string         `gorm:"column:descricao;type:text"`
	ImagemURL     string         `gorm:"column:imagem_url;type:text"`
	Status        StatusCampanha `gorm:"column:status;type:varchar(16);not null;index"`
	PrecoUnitario Centavos       `gorm:"column:preco_unitario;not null"`
	PrecosCombo   PrecosCombo    `gorm:"column:precos_combo;type:text;serializer:json"`
	DataSorteio   time.Time      `gorm:"column:data_sorteio;not null"`
	CriadoEm      time.Time      `gorm:"column:criado_em;autoCreateTime"`
	AtualizadoEm  time.Time      `gorm:"column:atualizado_em;autoUpdateTime"`
}

type Comprador struct {
	ID       CompradorID `gorm:"column:id;type:char(26);primaryKey"`
	Nome     string      `gorm:"column:nome;type:text;not null"`
	CPF      string      `gorm:"column:cpf;type:char(11);not null;index"`
	Celular  string      `gorm:"column:celular;type:varchar(20);not null"`
	Email    string      `gorm:"column:email;type:text;not null"`
	Endereco string      `gorm:"column:endereco;type:text"`
	CriadoEm time.Time   `gorm:"column:criado_em;autoCreateTime"`
}

type Pagamento struct {
	ID          PagamentoID     `gorm:"column:id;type:char(26);primaryKey"`
	CompradorID CompradorID     `gorm:"column:comprador_id;type:char(26);not null;index"`
	CampanhaID  CampanhaID      `gorm:"column:campanha_id;type:char(26);not null;index"`
	Valor       Centavos        `gorm:"column:valor;not null"`
	Quantidade  int             `gorm:"column:quantidade;not null"`
	Tier        string          `gorm:"column:tier;type:varchar(64);not null"`
	CobrancaID  string          `gorm:"column:cobranca_id;type:varchar(128);not null;uniqueIndex:idx_pagamentos_cobranca"`
	CodigoPix   string          `gorm:"column:codigo_pix;type:text"`
	QRCodeURL   string          `gorm:"column:qr_code_url;type:text"`
	Status      StatusPagamento `gorm:"column:status;type:varchar(32);not null;index:idx_pagamentos_status_expira,priority:1"`
	CriadoEm    time.Time       `gorm:"column:criado_em;not null"`
	ExpiraEm    time.Time       `gorm:"column:expira_em;not null;index:idx_pagamentos_status_expira,priority:2"`
	PagoEm      *time.Time      `gorm:"column:pago_em"`
	CanceladoEm *time.Time      `gorm:"column:cancelado_em"`
	// Tentativas e UltimaTentativaEm registram falhas da varredura ao consultar o gateway.
	TentativasConciliacao int        `gorm:"column:tentativas_conciliacao;not null;default:0"`
	UltimaTentativaEm     *time.Time `gorm:"column:ultima_tentativa_em"`
}

// NumeroRifa só existe enquanto o número está reservado ou pago; liberar significa apagar a linha.
type NumeroRifa struct {
	ID          NumeroID     `gorm:"column:id;type:char(26);primaryKey"`
	PagamentoID PagamentoID  `gorm:"column:pagamento_id;type:char(26);not null;index"`
	CampanhaID  CampanhaID   `gorm:"column:campanha_id;type:char(26);not null;uniqueIndex:idx_numeros_campanha_numero,priority:1"`
	Numero      int          `gorm:"column:numero;not null;uniqueIndex:idx_numeros_campanha_numero,priority:2"`
	Status      StatusNumero `gorm:"column:status;type:varchar(16);not null"`
	CriadoEm    time.Time    `gorm:"column:criado_em;not null"`
}

type AdminUsuario struct {
	ID        AdminID   `gorm:"column:id;type:char(26);primaryKey"`
	Username  string    `gorm:"column:username;type:varchar(64);not null;uniqueIndex"`
	SenhaHash string    `gorm:"column:senha_hash;type:text;not null"`
	CriadoEm  time.Time `gorm:"column:criado_em;autoCreateTime"`
}

// DetalhePagamento reúne o que o comprador vê na tela de pagamento/sucesso.
type DetalhePagamento struct {
	Pagamento      Pagamento
	Comprador      Comprador
	CampanhaTitulo string
	Numeros        []int
}

// CampanhaVitrine é a campanha exibida no catálogo público junto com o total já vendido.
type CampanhaVitrine struct {
	Campanha
	Vendidos int64
}

func (Campanha) TableName() string     { return "campanhas" }
func (Comprador) TableName() string    { return "compradores" }
func (Pagamento) TableName() string    { return "pagamentos" }
func (NumeroRifa) TableName() string   { return "numeros_rifa" }
func (AdminUsuario) TableName() string { return "admin_usuarios" }
