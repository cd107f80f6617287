package scanning

// receiptScanPrompt is the shared prompt used by all vision LLM providers.
// It asks for the same schema the ticket parser produces.
const receiptScanPrompt = `Analiza este ticket de compra y devuelve SOLO un JSON con este formato exacto, sin texto adicional ni backticks:
{
  "establecimiento": "nombre del lugar o null",
  "fecha": "fecha si aparece o null",
  "productos": [
    { "nombre": "nombre del producto", "precio": 2.50, "cantidad": 1 }
  ],
  "total": 15.30
}
Si no puedes leer algún precio usa 0. Los precios deben ser números decimales.`

// systemPrompt gives chat style providers context about the task
const systemPrompt = "Eres un experto leyendo tickets de compra. Lee con cuidado todo el texto de la imagen y extrae la información con precisión."
