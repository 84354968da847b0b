package catalog

import "restart50-service/internal/domain"

func defaultCourses() []domain.Course {
	return []domain.Course{
		{
			ID:          "c_ai_basics",
			Title:       "IA Essencial para Iniciantes",
			Category:    "IA",
			Level:       "Iniciante",
			Hours:       6,
			Description: "Conceitos práticos de IA, exemplos do dia a dia e como usar assistentes de forma segura.",
			Image:       "https://images.unsplash.com/photo-1737644467636-6b0053476bb2?q=80&w=1972&auto=format&fit=crop",
			Quiz: []domain.Question{
				{Text: "O que significa IA?", Choices: []string{"Internet Avançada", "Inteligência Artificial", "Informação Automatizada"}, Answer: 1},
				{Text: "Assistentes de IA ajudam em:", Choices: []string{"Enviar e-mails", "Cozinhar sem instruções", "Voar"}, Answer: 0},
				{Text: "Uma prática segura é:", Choices: []string{"Compartilhar senhas", "Usar senhas fortes", "Ignorar atualizações"}, Answer: 1},
			},
		},
		{
			ID:          "c_data_literacy",
			Title:       "Alfabetização de Dados",
			Category:    "Dados",
			Level:       "Iniciante",
			Hours:       8,
			Description: "Aprenda a interpretar números, gráficos e tomar decisões com base em dados simples.",
			Image:       "https://images.unsplash.com/photo-1460925895917-afdab827c52f?q=80&w=1115&auto=format&fit=crop",
			Quiz: []domain.Question{
				{Text: "Um gráfico de barras mostra:", Choices: []string{"Comparação entre categorias", "Mudança ao longo do tempo", "Mapa"}, Answer: 0},
				{Text: "Média aritmética é uma forma de:", Choices: []string{"Função estética", "Medida de tendência central", "Tipo de gráfico"}, Answer: 1},
			},
		},
		{
			ID:          "c_digital_marketing",
			Title:       "Marketing Digital Prático",
			Category:    "Marketing",
			Level:       "Intermediário",
			Hours:       10,
			Description: "Ferramentas básicas para divulgação online: redes sociais, conteúdo e relações com clientes.",
			Image:       "https://media.istockphoto.com/id/1207549263/pt/foto/it-developer-paperwork-on-board.jpg",
			Quiz: []domain.Question{
				{Text: "O que é SEO?", Choices: []string{"Otimização para mecanismos de busca", "Rede social nova", "Software de edição"}, Answer: 0},
				{Text: "Postagens constantes ajudam:", Choices: []string{"Engajamento", "Ignorar público", "Diminuir alcance"}, Answer: 0},
			},
		},
		{
			ID:          "c_iot_home",
			Title:       "IoT para o Lar e Saúde",
			Category:    "IoT",
			Level:       "Iniciante",
			Hours:       5,
			Description: "Como usar dispositivos conectados com segurança para conforto e monitoramento de saúde.",
			Image:       "https://plus.unsplash.com/premium_photo-1688678097473-2ce11d23e30c?q=80&w=970&auto=format&fit=crop",
			Quiz: []domain.Question{
				{Text: "IoT refere-se a:", Choices: []string{"Internet das Coisas", "Interface on Time", "Intelligent online Tools"}, Answer: 0},
				{Text: "Dispositivo IoT precisa:", Choices: []string{"Estar conectado", "Ser caro", "Ter impressora"}, Answer: 0},
			},
		},
		{
			ID:          "c_remotework",
			Title:       "Trabalho Remoto e Ferramentas",
			Category:    "Produtividade",
			Level:       "Iniciante",
			Hours:       6,
			Description: "Boas práticas para trabalhar online, segurança, comunicação e gestão do tempo.",
			Image:       "https://media.istockphoto.com/id/1395293365/pt/foto/computer-laptop-with-white-screen-coffee-cup-and-supplies-on-wooden-table.jpg",
			Quiz: []domain.Question{
				{Text: "Uma boa prática em home office é:", Choices: []string{"Ignorar horários", "Ter rotina", "Nunca pausar"}, Answer: 1},
				{Text: "Ferramentas para reunião online incluem:", Choices: []string{"Editor de imagens", "Plataformas de videoconferência", "Televisão"}, Answer: 1},
			},
		},
		{
			ID:          "c_senior_entrepreneur",
			Title:       "Empreendedorismo Sênior",
			Category:    "Empreendedorismo",
			Level:       "Intermediário",
			Hours:       8,
			Description: "Como transformar ideias em pequenos negócios e projetos com baixo investimento inicial.",
			Image:       "https://plus.unsplash.com/premium_photo-1661281203773-833d30e370ee?q=80&w=1170&auto=format&fit=crop",
			Quiz: []domain.Question{
				{Text: "Plano de negócios ajuda a:", Choices: []string{"Organizar ideias", "Esconder falhas", "Substituir produto"}, Answer: 0},
			},
		},
	}
}
