package subscription

const (
	bannerExpired           = "Assinatura expirada. Você está em modo leitura. Entre em contato com o administrador."
	bannerGracePeriodFormat = "Período de graça: %d dias restantes antes do modo leitura."
	bannerExpiresSoonFormat = "Sua assinatura vence em %d dia%s."
)
