package tour

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, StepHeadingKey, "== %s (%s) ==")
	message.SetString(lang, RowsAffectedKey, "%d linha(s) afetada(s)")
	message.SetString(lang, CountKey, "total: %d")
	message.SetString(lang, CreatedIDKey, "id criado: %d")
	message.SetString(lang, NextValueKey, "próximo valor: %d")
	message.SetString(lang, NoRowsKey, "(nenhuma linha)")
	message.SetString(lang, SkippedKey, "ignorado: %s")

	message.SetString(lang, TitleSchemaKey, "Definição do esquema")
	message.SetString(lang, TitleCreateKey, "Inserir e obter o id")
	message.SetString(lang, TitleReadKey, "Selecionar pelo id da sequência")
	message.SetString(lang, TitleProjectionKey, "Selecionar nome e diretor")
	message.SetString(lang, TitleDistinctKey, "Diretores distintos antes do episódio 5")
	message.SetString(lang, TitleUpdateKey, "Atualizar uma coluna")
	message.SetString(lang, TitleUpdateExpressionKey, "Atualizar com uma expressão")
	message.SetString(lang, TitleDeleteKey, "Excluir com filtro")
	message.SetString(lang, TitleCountKey, "Contagem")
	message.SetString(lang, TitleOrderByKey, "Ordenação")
	message.SetString(lang, TitleGroupByKey, "Agrupar por diretor")
	message.SetString(lang, TitleJoinKey, "Junção interna de jogadores e filmes")
	message.SetString(lang, TitleAliasKey, "Apelido de tabela")
	message.SetString(lang, TitleSelfJoinKey, "Autojunção com apelido")
	message.SetString(lang, TitleSchemaManagementKey, "Criar e remover um esquema")
	message.SetString(lang, TitleSequenceKey, "Sequências")
	message.SetString(lang, TitleBatchInsertKey, "Inserção em lote")
	message.SetString(lang, TitleReferencesKey, "Referências muitos-para-um")
	message.SetString(lang, TitleManyToManyKey, "Referências muitos-para-muitos")
	message.SetString(lang, TitleParentChildKey, "Referências pai-filho")
}
