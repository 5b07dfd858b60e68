// Package prompt assembles the instructions sent to the completion
// service: source-specific FAQ extraction prompts with an explicit
// reasoning section and a strict JSON output contract, a summary prompt,
// and the retrieval-augmented answer prompt.
package prompt

import "fmt"

// System prompts paired with the user prompts below.
const (
	FAQSystem     = "あなたは高品質なFAQ生成AIアシスタントです。"
	SummarySystem = "あなたは与えられたテキストを簡潔に要約するエキスパートです。"
	AnswerSystem  = `あなたは企業の社内知識アシスタントです。
社内マニュアルやSlackの会話から得られた情報を基に、正確で役立つ回答を提供してください。
与えられた情報だけに基づいて回答し、情報がない場合は正直に「わかりません」と答えてください。
回答は簡潔かつ丁寧な日本語で行い、専門用語があれば簡単な説明を加えてください。`
)

// outputContract is shared by all FAQ prompts: reasoning first under the
// 思考過程 heading, then the final JSON array in a fenced block. The
// parser depends on both markers.
const outputContract = `## 出力形式:
まず「思考過程:」という見出しの下で、テキストの分析と FAQ 候補の検討を行ってください。
その後、最終的な FAQ を以下の形式の JSON 配列のみを含むコードブロックとして出力してください。

` + "```json" + `
[
  {"question": "質問文", "answer": "回答文"},
  {"question": "質問文", "answer": "回答文"}
]
` + "```" + `

各 question は独立して理解できる完全な質問文に、各 answer は根拠となる記述に忠実な
完結した回答にしてください。テキストに根拠のない FAQ を作らないでください。`

const fewShotExample = `## 例:
入力テキスト「経費精算は毎月25日までに申請システムから提出してください。領収書の添付が必須です。」に対しては、次のような FAQ が得られます：

` + "```json" + `
[
  {"question": "経費精算の締め切りはいつですか？", "answer": "毎月25日までに申請システムから提出してください。"},
  {"question": "経費精算に領収書は必要ですか？", "answer": "はい、領収書の添付が必須です。"}
]
` + "```"

// Builder assembles prompts. Stateless; the type exists so callers hold a
// single collaborator with a fixed contract.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// PDFFaq builds the extraction prompt for document text. The text is
// expected to be structurer-enhanced; context carries caller-supplied
// provenance (document title, page number).
func (b *Builder) PDFFaq(text, context string) string {
	return fmt.Sprintf(`以下は社内マニュアル（PDF文書）から抽出されたテキストです。
このテキストから、社員が実際に尋ねそうな質問とその回答のペア（FAQ）を抽出してください。

%s

%s## 対象テキスト:
%s

## 指示:
1. 見出し・箇条書き・重要用語の構造情報を手がかりに、文書が説明している手順やルールを特定してください。
2. 1つのトピックにつき1つのFAQを作成し、3〜7件程度にまとめてください。
3. 回答には手順や条件を省略せずに含めてください。

%s`, contextBlock(context), fewShotExample+"\n\n", text, outputContract)
}

// SlackFaq builds the extraction prompt for conversation text.
func (b *Builder) SlackFaq(text, context string) string {
	return fmt.Sprintf(`以下は社内Slackチャンネルの会話です。
この会話から、他の社員にも役立つ質問とその回答のペア（FAQ）を抽出してください。

%s## 対象会話:
%s

## 指示:
1. 「検出された質問と回答のパターン」を手がかりに、実際に解決に至ったやり取りを特定してください。
2. 発言者名や挨拶などの会話特有の表現は取り除き、一般化した質問と回答に書き直してください。
3. 解決に至っていないやり取りや雑談からはFAQを作らないでください。

%s`, contextBlock(context), text, outputContract)
}

// GenericFaq builds the extraction prompt for text of unknown kind.
func (b *Builder) GenericFaq(text, context string) string {
	return fmt.Sprintf(`以下のテキストから、読者が尋ねそうな質問とその回答のペア（FAQ）を抽出してください。

%s## 対象テキスト:
%s

%s`, contextBlock(context), text, outputContract)
}

// Summary builds the 200-character summarization prompt.
func (b *Builder) Summary(text string) string {
	return fmt.Sprintf("以下のテキストを200文字以内で要約してください：\n\n%s", text)
}

// Answer builds the retrieval-augmented answer prompt: the search context
// followed by the question and chain-of-thought instructions. The answer
// engine extracts the final answer after the 最終回答 marker.
func (b *Builder) Answer(query, context string) string {
	return fmt.Sprintf(`以下の情報に基づいて質問に回答してください。

## 情報ソース:
%s

## 質問:
%s

## 指示:
1. まず与えられた情報を注意深く分析してください。
2. 質問に関連する情報を特定し、その重要性と信頼性を評価してください。
3. 情報源が複数ある場合は、それらを統合して一貫した回答を作成してください。
4. 情報が不足している場合は、その旨を正直に伝えてください。
5. 回答は明確、簡潔、かつ親切な日本語で作成してください。
6. 専門用語がある場合は、簡単な説明を加えてください。

## 思考プロセス:
質問を分析して、関連する情報源を確認します。各情報源の内容を検討した上で、
「最終回答:」という見出しに続けて回答を記述してください。
`, context, query)
}

func contextBlock(context string) string {
	if context == "" {
		return ""
	}
	return "## 補足情報:\n" + context + "\n\n"
}
