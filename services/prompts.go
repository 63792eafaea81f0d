package services

import (
	"fmt"
	"strings"

	"go_procure_backend/models"
)

// Prompt templates stay in Chinese: the catalog and the procurement
// requests this system handles are Chinese-language data.

const extractPromptTemplate = `你是一个专业的采购需求分析专家。请从以下采购需求中提取结构化信息。

要求：
1. 识别每一项采购需求
2. 提取产品名称、规格型号、采购数量
3. 标准化产品名称（去除口语化表述）
4. 只返回JSON数组，不要有其他内容

输出格式示例：
[
  {"name": "产品名称", "spec": "规格型号", "quantity": 1}
]

采购需求内容：
%s`

const splitPromptTemplate = `你是采购数据清洗专家。下面的采购品名中混杂了规格参数，请将其拆分为标准产品名称和规格型号。

要求：
1. product_name 只保留产品类别名称
2. spec 保留尺寸、端口数、容量、带宽等参数描述
3. 只返回JSON对象，不要有其他内容

输出格式示例：
{"product_name": "交换机", "spec": "24口 千兆 PoE"}

采购品名：
%s`

const matchPromptTemplate = `你是采购匹配专家。请判断客户需求与候选库存项的匹配度。

客户需求：
- 产品名称：%s
- 规格型号：%s

候选库存列表：
%s

请选择最匹配的库存项，返回JSON格式（只返回JSON，不要有其他内容）：
{"matched_id": 库存ID或null, "confidence": 0.0到1.0的置信度, "reason": "匹配原因"}

如果没有匹配项，matched_id返回null，confidence返回0。`

func buildExtractPrompt(content string) string {
	return fmt.Sprintf(extractPromptTemplate, content)
}

func buildSplitPrompt(name string) string {
	return fmt.Sprintf(splitPromptTemplate, name)
}

func buildMatchPrompt(reqName, reqSpec string, candidates []models.ScoredCandidate) string {
	if reqSpec == "" {
		reqSpec = "未指定"
	}
	var lines []string
	for _, c := range candidates {
		spec := c.Spec
		if spec == "" {
			spec = "N/A"
		}
		category := c.Category
		if category == "" {
			category = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- ID: %d, 产品名称: %s, 规格: %s, 分类: %s",
			c.ID, c.ProductName, spec, category))
	}
	return fmt.Sprintf(matchPromptTemplate, reqName, reqSpec, strings.Join(lines, "\n"))
}
